// Package services holds cross-cutting helpers shared by worker components:
// the pipeline error taxonomy and context annotation utilities.
package services
