package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"tokenadmin/internal/models"
	"tokenadmin/internal/services/wizard"
	"tokenadmin/internal/utils"
	"tokenadmin/internal/utils/pagination"
	"tokenadmin/internal/utils/response"
	"tokenadmin/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WizardHandler struct {
	wizardService wizard.Service
}

func NewWizardHandler(wizardService wizard.Service) *WizardHandler {
	return &WizardHandler{
		wizardService: wizardService,
	}
}

func (h *WizardHandler) CreateDraft(c *fiber.Ctx) error {
	claims, err := utils.GetAdminClaims(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	draft, err := h.wizardService.Start(c.UserContext(), claims.UserID)
	if err != nil {
		return handleWizardError(c, err)
	}
	return response.Created(c, "Draft created", draft)
}

func (h *WizardHandler) ListDrafts(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	drafts, total, err := h.wizardService.List(c.UserContext(), p.Page, p.Limit)
	if err != nil {
		return handleWizardError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, drafts))
}

func (h *WizardHandler) GetDraft(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid draft id")
	}

	draft, err := h.wizardService.Get(c.UserContext(), id)
	if err != nil {
		return handleWizardError(c, err)
	}
	return response.Success(c, "Draft retrieved", draft)
}

func (h *WizardHandler) SaveStep(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid draft id")
	}

	// The request body buffer is reused by fiber after the handler returns
	payload := json.RawMessage(append([]byte(nil), c.Body()...))
	result, err := h.wizardService.SaveStep(c.UserContext(), id, models.WizardStep(c.Params("step")), payload)
	if err != nil {
		return handleWizardError(c, err)
	}
	return response.Success(c, "Step saved", result)
}

func (h *WizardHandler) Submit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid draft id")
	}

	claims, err := utils.GetAdminClaims(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.wizardService.Submit(c.UserContext(), id, claims.UserID)
	if err != nil {
		return handleWizardError(c, err)
	}
	return response.Success(c, "Draft submitted", result)
}

func handleWizardError(c *fiber.Ctx, err error) error {
	var feeErr *wizard.FeeValidationError
	if errors.As(err, &feeErr) {
		return response.ErrorWithData(c, fiber.StatusUnprocessableEntity, wizard.ErrFeeValidation.Error(), fiber.Map{
			"validation":  feeErr.Result,
			"calculation": feeErr.Calculation,
		})
	}

	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		return response.ValidationError(c, wizard.ErrInvalidPayload.Error(), fieldErrs)
	}

	switch {
	case errors.Is(err, wizard.ErrDraftNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, wizard.ErrInvalidPayload), errors.Is(err, wizard.ErrUnknownStep):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, wizard.ErrStepOutOfOrder),
		errors.Is(err, wizard.ErrDraftSubmitted),
		errors.Is(err, wizard.ErrIncompleteDraft):
		return response.Conflict(c, err.Error())
	default:
		log.Printf("wizard: %s %s failed: %v", c.Method(), c.Path(), err)
		return response.ServerError(c, "internal server error")
	}
}
