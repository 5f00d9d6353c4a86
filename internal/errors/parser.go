package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is the parsed form of a storage or business error.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a raw error into a code plus a user-facing message.
// Constraint details stay out of the message; the code tells the frontend
// what happened.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Terjadi kesalahan pada server",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Postgres constraint violations surface as text through GORM.

	// Unique constraint (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower, context)
	}

	// Foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Data masih dipakai oleh data lain",
		}
	}

	// Not null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "Ada kolom wajib yang belum diisi",
		}
	}

	// Check constraint (23514); the only checks in the schema guard quantity
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    CartInvalidQuantity,
			Message: "Jumlah barang tidak valid",
		}
	}

	// Connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Koneksi ke layanan gagal. Coba lagi nanti",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Terjadi kesalahan pada server. Coba lagi nanti",
	}
}

func parseDuplicateKeyError(errStrLower, context string) ErrorInfo {
	switch {
	case strings.Contains(errStrLower, "username"):
		return ErrorInfo{Code: AuthUsernameExists, Message: "Username sudah digunakan"}
	case strings.Contains(errStrLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email sudah terdaftar"}
	case strings.Contains(errStrLower, "idx_cart_product"):
		return ErrorInfo{Code: ResourceConflict, Message: "Barang sudah ada di keranjang"}
	case strings.Contains(errStrLower, "user_id") && context == "cart":
		return ErrorInfo{Code: ResourceConflict, Message: "Keranjang untuk pengguna ini sudah ada"}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Data sudah terdaftar"}
	}
}

// ParseAndRespond parses an error and writes the response in one step
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func getNotFoundMessage(context string) string {
	switch context {
	case "user":
		return "Pengguna tidak ditemukan"
	case "product":
		return "Barang tidak ditemukan"
	case "cart":
		return "Keranjang tidak ditemukan"
	case "order":
		return "Pesanan tidak ditemukan"
	default:
		return "Data tidak ditemukan"
	}
}
