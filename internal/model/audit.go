package model

const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

const (
	AuditActionSignUp        = "user.sign_up"
	AuditActionSignUpAdmin   = "user.sign_up_admin"
	AuditActionSignIn        = "user.sign_in"
	AuditActionSignOut       = "user.sign_out"
	AuditActionRefresh       = "user.refresh"
	AuditActionSocialLogin   = "user.social_login"
	AuditActionVerify        = "user.verify"
	AuditActionUpdateUser    = "user.update"
	AuditActionDeleteComment = "comment.delete"
)

type AuditActor struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	IP     string `json:"ip,omitempty"`
}

type AuditEntry struct {
	Action     string     `json:"action"`
	OccurredAt string     `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type AuditQuery struct {
	Action  string
	ActorID string
	Status  string
	From    string
	To      string
	Page    int
	Limit   int
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
}
