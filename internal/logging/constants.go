package logging

// Field names shared by every component so log lines can be filtered
// consistently across parsing, aggregation and categorization.
const (
	FieldFile       = "file_path"
	FieldParser     = "parser"
	FieldExtension  = "extension"
	FieldSheet      = "sheet"
	FieldRowID      = "row_id"
	FieldRows       = "rows"
	FieldHeaders    = "headers"
	FieldMonth      = "month"
	FieldCategory   = "category"
	FieldConfidence = "confidence"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldModel      = "model"
	FieldOutputFile = "output_file"
)
