// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Every failure of the dataset codecs is reported as a *StructuredError whose
// Code tells the caller what went wrong (malformed syntax, unknown component,
// invalid sparse structure, ...). Codec failures also carry the Position of
// the offending input byte.
//
// Example usage:
//
//	_, _, err := serializer.Deserialize(raw, serializer.FormatJSON)
//	if errors.IsCode(err, errors.ErrCodeUnknownAttribute) {
//	    // reject the upload
//	}
//	if pos, ok := errors.PositionOf(err); ok {
//	    fmt.Printf("syntax error at %s\n", pos)
//	}
package errors
