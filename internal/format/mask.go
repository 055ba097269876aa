package format

import "strings"

// MaskPhone hides the middle digits of a Korean phone number:
// "010-1234-5678" -> "010-****-5678". Numbers without the expected shape
// are masked wholesale rather than returned as-is.
func MaskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	parts := strings.Split(phone, "-")
	if len(parts) == 3 {
		return parts[0] + "-" + strings.Repeat("*", len(parts[1])) + "-" + parts[2]
	}
	// Unformatted digit strings: keep the first 3 and last 4 visible.
	if len(phone) >= 8 {
		return phone[:3] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-4:]
	}
	return strings.Repeat("*", len(phone))
}

// MaskResidentNo hides the trailing digits of a resident registration
// number: "900101-1234567" -> "900101-1******". Only the birthdate and the
// gender digit stay visible.
func MaskResidentNo(rrn string) string {
	rrn = strings.TrimSpace(rrn)
	if rrn == "" {
		return ""
	}
	if i := strings.IndexByte(rrn, '-'); i >= 0 && len(rrn) > i+2 {
		return rrn[:i+2] + strings.Repeat("*", len(rrn)-i-2)
	}
	if len(rrn) > 7 {
		return rrn[:7] + strings.Repeat("*", len(rrn)-7)
	}
	return strings.Repeat("*", len(rrn))
}
