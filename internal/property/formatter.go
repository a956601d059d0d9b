package property

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatterCode selects which part of a resolved path a token yields.
type FormatterCode string

const (
	// FormatFileName yields the file name with its extension.
	FormatFileName FormatterCode = "FileName"
	// FormatBaseName yields the file name without its extension.
	FormatBaseName FormatterCode = "BaseName"
	// FormatFullPath yields the path unchanged.
	FormatFullPath FormatterCode = "FullPath"
	// FormatParentDir yields the parent directory.
	FormatParentDir FormatterCode = "ParentDir"
	// FormatExtension yields the extension including the leading dot.
	FormatExtension FormatterCode = "Extension"
)

// UnknownFormatterError reports a code outside the fixed set. Unknown codes
// are a caller defect, not bad user data.
type UnknownFormatterError struct {
	Code string
}

func (e *UnknownFormatterError) Error() string {
	return fmt.Sprintf("unknown path formatter code %q", e.Code)
}

// ApplyFormatter derives part of a path. Codes match case-insensitively.
// Codes whose answer is genuinely empty succeed with "": the extension of an
// extensionless path is the empty string, not an error.
func ApplyFormatter(path string, code FormatterCode) (string, error) {
	switch {
	case strings.EqualFold(string(code), string(FormatFileName)):
		return filepath.Base(path), nil
	case strings.EqualFold(string(code), string(FormatBaseName)):
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base)), nil
	case strings.EqualFold(string(code), string(FormatFullPath)):
		return path, nil
	case strings.EqualFold(string(code), string(FormatParentDir)):
		return filepath.Dir(path), nil
	case strings.EqualFold(string(code), string(FormatExtension)):
		return filepath.Ext(path), nil
	default:
		return "", &UnknownFormatterError{Code: string(code)}
	}
}
