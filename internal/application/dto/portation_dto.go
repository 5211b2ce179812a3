package dto

import "time"

// ImportRowIssue fila omitida o fallida (número de fila de la hoja, base 1).
type ImportRowIssue struct {
	Row    int    `json:"row"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// ImportReport resultado de una importación.
type ImportReport struct {
	Kind       string           `json:"kind"`
	Total      int              `json:"total"`
	Imported   int              `json:"imported"`
	Updated    int              `json:"updated"`
	Skipped    []ImportRowIssue `json:"skipped"`
	Failed     []ImportRowIssue `json:"failed"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// ImportJobResponse estado de un trabajo de importación.
type ImportJobResponse struct {
	JobID  string        `json:"job_id"`
	Kind   string        `json:"kind"`
	Status string        `json:"status"`
	Report *ImportReport `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}
