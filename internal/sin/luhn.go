package sin

const sinLength = 9

// ValidLuhn reports whether value is exactly nine digits passing the mod-10 check.
func ValidLuhn(value string) bool {
	if len(value) != sinLength {
		return false
	}
	sum := 0
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}

// Format renders nine digits as DDD-DDD-DDD.
func Format(value string) string {
	if len(value) != sinLength {
		return value
	}
	return value[0:3] + "-" + value[3:6] + "-" + value[6:9]
}

// Mask renders the masked display string for the last three digits.
func Mask(last3 string) string {
	return "XXX-XXX-" + last3
}
