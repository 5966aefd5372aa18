package core

// FormatScalar renders a single value for display using DefaultPlaceholder.
//
//   - empty values (nil, "", whitespace, NaN) → "-"
//   - booleans → "Yes" / "No"
//   - numbers and numeric strings → "1,234" or "1,234.5"
//   - anything else → its string form
func FormatScalar(v any) string {
	return formatScalar(v, DefaultPlaceholder)
}

// FormatScalar renders v with the normalizer's placeholder.
func (n *Normalizer) FormatScalar(v any) string {
	return formatScalar(v, n.opts.Placeholder)
}

func formatScalar(v any, placeholder string) string {
	if isEmpty(v) {
		return placeholder
	}
	if s, ok := FormatNumber(v); ok {
		return s
	}
	return displayString(v)
}

// Extract returns the number used to sort and filter v. Range columns use
// the lower bound of "100-200" style cells. Text columns never extract.
func (c ColumnDefinition) Extract(v any) (float64, bool) {
	if c.Kind != KindNumeric {
		return 0, false
	}
	if c.RangeExtraction {
		n, ok := rangeLowerBound(v)
		if !ok {
			return 0, false
		}
		return numericFloat(n)
	}
	return ParseNumber(v)
}

// Format returns the display string for v in this column. Numbers are
// grouped when ThousandsFormat is set; range cells keep their original text.
func (c ColumnDefinition) Format(v any, placeholder string) string {
	if isEmpty(v) {
		return placeholder
	}
	if c.Kind == KindNumeric && c.ThousandsFormat {
		if s, ok := FormatNumber(v); ok {
			return s
		}
	}
	return displayString(v)
}
