package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrDatasetNotFound ErrCode = "DATASET_NOT_FOUND"
	ErrUnknownSubject  ErrCode = "UNKNOWN_SUBJECT"

	// ─── Upload ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrInvalidExt      ErrCode = "INVALID_EXTENSION"
	ErrCorruptedFile   ErrCode = "CORRUPTED_FILE"
	ErrInvalidStruct   ErrCode = "INVALID_DATA_STRUCTURE"
	ErrUnknownColumn   ErrCode = "UNKNOWN_COLUMN"
	ErrDuplicateKey    ErrCode = "DUPLICATE_KEY"
	ErrNonNumeric      ErrCode = "NON_NUMERIC"
	ErrOutOfRange      ErrCode = "OUT_OF_RANGE"
	ErrNoTeacherColumn ErrCode = "NO_TEACHER_COLUMN"

	// ─── Analysis ──────────────────────────────────────────────────────
	ErrMissingCategory     ErrCode = "MISSING_CATEGORICAL_COLUMN"
	ErrTooManyCategories   ErrCode = "TOO_MANY_CATEGORIES"
	ErrInsufficientSamples ErrCode = "INSUFFICIENT_SAMPLE_SIZE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrDatasetNotFound:
		return "Dataset not found or expired. Please upload the file again."
	case ErrUnknownSubject:
		return "Subject does not exist in this dataset."

	// ─── Upload ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrInvalidExt:
		return "File must be in CSV or Excel format (.csv, .xlsx, .xlsm)."
	case ErrCorruptedFile:
		return "The file appears to be corrupted or unreadable."
	case ErrInvalidStruct:
		return "The file structure is invalid."
	case ErrUnknownColumn:
		return "The file contains a column that is not allowed."
	case ErrDuplicateKey:
		return "Duplicate values found in 'Roll No'."
	case ErrNonNumeric:
		return "Marks and attendance columns must be numeric."
	case ErrOutOfRange:
		return "Marks and attendance must lie between 0 and 100."
	case ErrNoTeacherColumn:
		return "Subject has no teacher column."

	// ─── Analysis ──────────────────────────────────────────────────────
	case ErrMissingCategory:
		return "No usable categorical column (Gender or Religion) was found."
	case ErrTooManyCategories:
		return "The categorical column has too many distinct values."
	case ErrInsufficientSamples:
		return "Not enough students to run the analysis."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
