package constants

import "strings"

// Document types assigned by classification and by the vision engine.
// DocTypePDF is the container type reported for whole PDF uploads, whose
// per-page types are only visible in the extracted records.
const (
	DocTypeKTP      = "KTP"
	DocTypePaspor   = "PASPOR"
	DocTypePassport = "PASSPORT"
	DocTypeVisa     = "VISA"
	DocTypePDF      = "PDF"
	DocTypeUnknown  = "UNKNOWN"
)

// IdentityTypePaspor is the Siskopatuh identity-type label written by the
// post-merge consistency pass.
const IdentityTypePaspor = "Paspor"

// Citizenship values accepted by validation.
const (
	CitizenshipWNI = "WNI"
	CitizenshipWNA = "WNA"
)

// Upload limits enforced at the serving edge, before the pipeline runs.
const (
	MaxFileSizeMB      = 10
	MaxFileSizeBytes   = MaxFileSizeMB * 1024 * 1024
	MaxFilesPerRequest = 50
)

// AllowedExtensions holds the accepted upload extensions for document intake.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext is an accepted upload type. The dot is
// optional and case is ignored.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
