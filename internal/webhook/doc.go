// Package webhook notifies the downstream enhancement service when a
// batch of composited files has been uploaded and is ready for pickup.
package webhook
