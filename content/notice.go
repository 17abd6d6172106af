package content

// Tone is the visual weight of a notice.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
)

// Notice is a transient message shown to the admin after an operation.
type Notice struct {
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

// IsZero reports whether there is nothing to show.
func (n Notice) IsZero() bool { return n.Message == "" }

// Success builds a success notice.
func Success(msg string) Notice { return Notice{Message: msg, Tone: ToneSuccess} }

// Failure builds an error notice prefixed with what failed.
func Failure(prefix string, err error) Notice {
	if err == nil {
		return Notice{Message: prefix, Tone: ToneError}
	}
	return Notice{Message: prefix + ": " + err.Error(), Tone: ToneError}
}

// Warning builds a warning notice.
func Warning(msg string) Notice { return Notice{Message: msg, Tone: ToneWarning} }
