package handlers

import (
	"errors"

	"tokenadmin/internal/services/fees"
	"tokenadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type FeeHandler struct {
	registry   *fees.Registry
	calculator *fees.Calculator
	validator  *fees.Validator
}

func NewFeeHandler(registry *fees.Registry, calculator *fees.Calculator, validator *fees.Validator) *FeeHandler {
	return &FeeHandler{
		registry:   registry,
		calculator: calculator,
		validator:  validator,
	}
}

type calculateRequest struct {
	Category          string   `json:"category"`
	BasePropertyValue float64  `json:"basePropertyValue"`
	DisabledItems     []string `json:"disabledItems"`
}

func (h *FeeHandler) ListCategories(c *fiber.Ctx) error {
	return response.Success(c, "Fee schedules retrieved", h.registry.Categories())
}

func (h *FeeHandler) GetCategory(c *fiber.Ctx) error {
	schedule := h.registry.GetFeeStructureByCategory(c.Params("id"))
	if schedule == nil {
		return response.NotFound(c, "fee schedule not found")
	}

	return response.Success(c, "Fee schedule retrieved", fiber.Map{
		"schedule": schedule,
		"groups":   fees.GetCategorizedFees(schedule.FeeItems),
	})
}

// Calculate prices a schedule at a base value. Inputs that cannot be priced
// yet are not an error; the result is null.
func (h *FeeHandler) Calculate(c *fiber.Ctx) error {
	var req calculateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	form := fees.NewFeeForm(h.registry, h.calculator)
	form.SetCategory(req.Category)
	form.SetBasePropertyValue(req.BasePropertyValue)
	for _, id := range req.DisabledItems {
		if err := form.SetItemEnabled(id, false); err != nil {
			if errors.Is(err, fees.ErrUnknownCategory) {
				break
			}
			return response.BadRequest(c, err.Error())
		}
	}

	result := form.Result()
	if result == nil {
		return response.Success(c, "Fees not computable for the given input", nil)
	}
	return response.Success(c, "Fees calculated", result)
}

func (h *FeeHandler) Validate(c *fiber.Ctx) error {
	var in fees.ValidationInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result := h.validator.Validate(in)
	message := "Fee structure is valid"
	if !result.IsValid {
		message = "Fee structure is invalid"
	}
	return response.Success(c, message, result)
}
