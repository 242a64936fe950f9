package validation

import "strings"

// Field names one input of the authentication form.
type Field string

// Known form fields. Submit is the slot for errors that belong to the
// submission as a whole rather than to a single input.
const (
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
	FieldUsername Field = "username"
	FieldPhone    Field = "phone"
	FieldSubmit   Field = "submit"
)

// Fields lists every known field in display order.
var Fields = []Field{FieldEmail, FieldPassword, FieldUsername, FieldPhone, FieldSubmit}

// FormErrors holds at most one human-readable message per known field.
// The zero value means the form is valid.
type FormErrors struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Submit   string `json:"submit,omitempty"`
}

// Empty reports whether no field carries an error.
func (e FormErrors) Empty() bool {
	return e == FormErrors{}
}

// Get returns the message stored for f, or "" if there is none.
func (e FormErrors) Get(f Field) string {
	switch f {
	case FieldEmail:
		return e.Email
	case FieldPassword:
		return e.Password
	case FieldUsername:
		return e.Username
	case FieldPhone:
		return e.Phone
	case FieldSubmit:
		return e.Submit
	}
	return ""
}

// Set stores msg for f. Unknown fields are ignored.
func (e *FormErrors) Set(f Field, msg string) {
	switch f {
	case FieldEmail:
		e.Email = msg
	case FieldPassword:
		e.Password = msg
	case FieldUsername:
		e.Username = msg
	case FieldPhone:
		e.Phone = msg
	case FieldSubmit:
		e.Submit = msg
	}
}

// Error joins the populated messages so FormErrors can travel as an error.
func (e FormErrors) Error() string {
	var b strings.Builder
	for _, f := range Fields {
		msg := e.Get(f)
		if msg == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(string(f) + ": " + msg)
	}
	return b.String()
}
