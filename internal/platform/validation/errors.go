package validation

import (
	"github.com/go-playground/validator/v10"
)

// ErrorBody is a standard validation error payload.
type ErrorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

// ErrorResponse converts a validator error into a structured response. Field
// keys come from the JSON tag names registered in New. Constraints with a
// parameter keep it, so "oneof=daily weekly monthly" survives into the
// response and tells the caller what would have been accepted.
func ErrorResponse(err error) ErrorBody {
	fields := map[string][]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			constraint := fe.Tag()
			if p := fe.Param(); p != "" {
				constraint += "=" + p
			}
			fields[fe.Field()] = append(fields[fe.Field()], constraint)
		}
	}
	if len(fields) == 0 {
		return ErrorBody{Error: err.Error(), Fields: fields}
	}
	return ErrorBody{Error: "validation_failed", Fields: fields}
}
