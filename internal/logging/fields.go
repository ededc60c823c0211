package logging

// Standardized attribute keys used across the worker so log lines stay
// greppable regardless of which component emitted them.
const (
	FieldComponent = "component"

	FieldUserID = "user_id"

	FieldProjectID = "project_id"

	FieldRequestID = "request_id"

	FieldFileID = "file_id"

	FieldFileName = "file_name"

	FieldFolderID = "folder_id"

	FieldTemplateID = "template_id"

	FieldEventType = "event_type"

	FieldErrorHint = "error_hint"
)
