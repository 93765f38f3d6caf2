package account

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mroldanv/presente/core"
)

var (
	// password policy
	pwdMinLen = 6
	pwdMaxLen = 20

	pwdLenTag  = "pwdlen"
	pwdLenText = fmt.Sprintf("password must be between %d and %d characters", pwdMinLen, pwdMaxLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"
)

func init() {
	core.Validate.RegisterStructValidation(accountStructValidation, NewAccount{}, UpdateCredentials{})
	core.RegisterCustomTranslation(pwdLenTag, pwdLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
}

// accountStructValidation does struct level validation on NewAccount and
// UpdateCredentials structs.
func accountStructValidation(sl validator.StructLevel) {
	switch acct := sl.Current().Interface().(type) {
	case NewAccount:
		validatePassword(acct.Password, "password", "Password", sl)
	case UpdateCredentials:
		validatePassword(acct.NewPassword, "new_password", "NewPassword", sl)
	}
}

// validatePassword applies the password policy:
// - length within [6, 20]
// - no whitespace
func validatePassword(pwd, name, structName string, sl validator.StructLevel) {
	if len(pwd) < pwdMinLen || len(pwd) > pwdMaxLen {
		sl.ReportError(pwd, name, structName, pwdLenTag, "")
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			sl.ReportError(pwd, name, structName, pwdNoSpaceTag, "")
			return
		}
	}
}
