package domain

import "time"

// Form field names shared by the HTML pages and the processing endpoints.
const (
	FieldEmail    = "e-mail_registro"
	FieldPhone    = "telefono_registro"
	FieldPassword = "contrasena_registro"
	FieldRemember = "recordar"
)

// Flash holds messages carried across exactly one redirect.
type Flash struct {
	Error   string            `json:"error,omitempty"`
	Errors  []string          `json:"errors,omitempty"`
	Success string            `json:"success,omitempty"`
	Info    string            `json:"info,omitempty"`
	Form    map[string]string `json:"form,omitempty"`
}

// Empty reports whether the flash carries nothing to render.
func (f Flash) Empty() bool {
	return f.Error == "" && len(f.Errors) == 0 && f.Success == "" && f.Info == "" && len(f.Form) == 0
}

// WebSession is the per-client state keyed by the session cookie.
type WebSession struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	LoggedIn  bool      `json:"logged_in"`
	LoginAt   time.Time `json:"login_at,omitempty"`
	Remember  bool      `json:"remember,omitempty"`
	ReturnTo  string    `json:"return_to,omitempty"`
	Flash     Flash     `json:"flash"`
	CreatedAt time.Time `json:"created_at"`

	dirty bool
}

// NewWebSession constructs an anonymous session bound to id.
func NewWebSession(id string, at time.Time) *WebSession {
	return &WebSession{ID: id, CreatedAt: at, dirty: true}
}

// MarkDirty flags the session for persistence at the end of the request.
func (s *WebSession) MarkDirty() {
	s.dirty = true
}

// Dirty reports whether the session changed during the request.
func (s *WebSession) Dirty() bool {
	return s.dirty
}

// ClearDirty resets the change marker after a successful save.
func (s *WebSession) ClearDirty() {
	s.dirty = false
}

// Authenticate binds the session to the given user.
func (s *WebSession) Authenticate(user User, at time.Time) {
	s.UserID = user.ID
	s.Email = user.Email
	s.LoggedIn = true
	s.LoginAt = at
	s.dirty = true
}

// SetError stores a single error message for the next render.
func (s *WebSession) SetError(msg string) {
	s.Flash.Error = msg
	s.dirty = true
}

// SetErrors stores a list of validation messages for the next render.
func (s *WebSession) SetErrors(msgs []string) {
	s.Flash.Errors = append([]string(nil), msgs...)
	s.dirty = true
}

// SetSuccess stores a success message for the next render.
func (s *WebSession) SetSuccess(msg string) {
	s.Flash.Success = msg
	s.dirty = true
}

// SetInfo stores an informational message for the next render.
func (s *WebSession) SetInfo(msg string) {
	s.Flash.Info = msg
	s.dirty = true
}

// SetForm stores submitted form values for re-population. The password field is never kept.
func (s *WebSession) SetForm(values map[string]string) {
	form := make(map[string]string, len(values))
	for k, v := range values {
		if k == FieldPassword {
			continue
		}
		form[k] = v
	}
	s.Flash.Form = form
	s.dirty = true
}

// TakeFlash returns the pending messages and clears them. Form values are left for TakeForm.
func (s *WebSession) TakeFlash() Flash {
	out := Flash{
		Error:   s.Flash.Error,
		Errors:  s.Flash.Errors,
		Success: s.Flash.Success,
		Info:    s.Flash.Info,
	}
	if out.Error != "" || len(out.Errors) > 0 || out.Success != "" || out.Info != "" {
		s.dirty = true
	}
	s.Flash.Error = ""
	s.Flash.Errors = nil
	s.Flash.Success = ""
	s.Flash.Info = ""
	return out
}

// TakeForm returns the stashed form values and clears them.
func (s *WebSession) TakeForm() map[string]string {
	form := s.Flash.Form
	if form == nil {
		return map[string]string{}
	}
	s.Flash.Form = nil
	s.dirty = true
	return form
}

// TakeReturnTo returns the remembered return URL and clears it.
func (s *WebSession) TakeReturnTo() string {
	url := s.ReturnTo
	if url != "" {
		s.ReturnTo = ""
		s.dirty = true
	}
	return url
}
