// Package drive implements the remote storage REST client used to list,
// download, upload, and delete files in users' watched folders.
package drive
