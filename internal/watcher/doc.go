// Package watcher runs the periodic scheduler that discovers new images in
// users' watched folders, composites the project template over them, uploads
// the results, and hands the batch to the enhancement webhook.
package watcher
