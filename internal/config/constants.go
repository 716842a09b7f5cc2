package config

const (
	// ExcelPattern matches the yearly indicator workbooks, e.g.
	// "Sustainability_data 2022.xlsx".
	ExcelPattern = "Sustainability_data *.xlsx"

	// MaxUploadSize caps document uploads to the chat agent (bytes).
	MaxUploadSize = 25 << 20
)
