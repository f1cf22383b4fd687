package dto

// ProvisionedAccount is one freshly created student login. The temporary
// password appears only in this response; the server keeps just the hash.
type ProvisionedAccount struct {
	StudentID    string `json:"student_id"`
	StudentNo    string `json:"student_no"`
	StudentName  string `json:"student_name"`
	Username     string `json:"username"`
	TempPassword string `json:"temp_password"`
}

// ProvisionResult summarizes one bulk provisioning run.
type ProvisionResult struct {
	Created []ProvisionedAccount `json:"created"`
	Skipped int                  `json:"skipped"`
}
