package dto

// NoticeVariant selects how a UI renders a notice.
type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a user-facing notification travelling in response meta.
type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Variant     NoticeVariant `json:"variant"`
}

// Success builds a default-styled notice.
func Success(title, description string) *Notice {
	return &Notice{Title: title, Description: description, Variant: NoticeDefault}
}

// Failure builds a destructive notice titled "Error".
func Failure(description string) *Notice {
	return &Notice{Title: "Error", Description: description, Variant: NoticeDestructive}
}
