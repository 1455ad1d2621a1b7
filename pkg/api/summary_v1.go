// pkg/api/summary_v1.go
package api

// GenerateSummaryV1 is the stable JSON schema describing a generated archive.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type GenerateSummaryV1 struct {
	Archive        string   `json:"archive"`
	TSVName        string   `json:"tsv_name"`
	Rows           int      `json:"rows"`
	Fields         []string `json:"fields,omitempty"`
	FASTAFiles     []string `json:"fasta_files"`
	ReferencedRows int      `json:"referenced_rows"`
	Policy         string   `json:"policy"`
	Seed           uint64   `json:"seed"`
	Bytes          int64    `json:"bytes,omitempty"` // archive size on disk
}

// VerifyReportV1 is the stable JSON schema for a verified archive.
type VerifyReportV1 struct {
	Archive        string   `json:"archive"`
	TSVName        string   `json:"tsv_name"`
	Rows           int      `json:"rows"`
	FASTAFiles     []string `json:"fasta_files"`
	ReferencedRows int      `json:"referenced_rows"`
}
