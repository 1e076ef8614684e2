package response

import "github.com/gin-gonic/gin"

// Business error codes surfaced to clients. StorageError never leaks details;
// it always maps to CodeInternal.
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeCapacityExceeded      = "CAPACITY_EXCEEDED"
	CodeNotFound              = "NOT_FOUND"
	CodeBookingCancelled      = "BOOKING_CANCELLED"
	CodeLinkExpired           = "LINK_EXPIRED"
	CodeAlreadySubmitted      = "ALREADY_SUBMITTED"
	CodeAlreadyUsed           = "ALREADY_USED"
	CodeAlreadyCheckedIn      = "ALREADY_CHECKED_IN"
	CodePrimaryVisitorMissing = "PRIMARY_VISITOR_MISSING"
	CodeInvalidTransition     = "INVALID_STATUS_TRANSITION"
	CodeInternal              = "INTERNAL_ERROR"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
