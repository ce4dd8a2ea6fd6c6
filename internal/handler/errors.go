package handler

import (
	"errors"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Errors  []problemBody `json:"errors,omitempty"`
}

type problemBody struct {
	Code      string     `json:"code"`
	Field     string     `json:"field,omitempty"`
	Message   string     `json:"message"`
	Conflicts []batchRef `json:"conflicts,omitempty"`
}

type batchRef struct {
	BatchID   string `json:"batchId"`
	BatchName string `json:"batchName"`
}

func statusOf(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return fiber.StatusBadRequest
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeDuplicateName, domain.CodeDateConflict, domain.CodeForeignKey:
		return fiber.StatusConflict
	case domain.CodeBusinessRule:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders domain failures with their stable code. Anything else is
// handed to the app error handler.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.CodeOf(err)
	if code == domain.CodeGeneric {
		return err
	}

	body := errorBody{Code: code.String(), Message: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, p := range verr.Problems {
			body.Errors = append(body.Errors, problemBody{
				Code:      p.Code.String(),
				Field:     p.Field,
				Message:   p.Message,
				Conflicts: toBatchRefs(p.Conflicts),
			})
		}
	} else if refs := domain.ConflictsOf(err); len(refs) > 0 {
		body.Errors = []problemBody{{
			Code:      code.String(),
			Message:   err.Error(),
			Conflicts: toBatchRefs(refs),
		}}
	}

	return c.Status(statusOf(code)).JSON(body)
}

func toBatchRefs(refs []domain.BatchRef) []batchRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]batchRef, 0, len(refs))
	for _, r := range refs {
		out = append(out, batchRef{BatchID: r.ID, BatchName: r.Name})
	}
	return out
}
