// validation.go - Input validation helpers for signup and upload.
package server

import "regexp"

// allowedUploadExtensions is the office-document allow-set. Matching is a
// case-sensitive suffix check: "deck.PPTX" is rejected.
var allowedUploadExtensions = []string{".pptx", ".docx", ".xlsx"}

// allowedFileExtension reports whether the filename ends in one of the
// allowed extensions.
func allowedFileExtension(name string) bool {
	for _, ext := range allowedUploadExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// validateEmail checks if an email address is valid.
func validateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// validatePassword checks password strength requirements.
func validatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	if len(password) > 128 {
		return false, "Password must be less than 128 characters"
	}
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	if !hasNumber || !hasLetter {
		return false, "Password must contain both letters and numbers"
	}
	return true, ""
}
