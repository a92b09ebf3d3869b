package authHandler

import (
	"strconv"
	"time"

	"VisageAuth/internal/api/auth"
	contextPkg "VisageAuth/pkg/context"
	"VisageAuth/pkg/handlerUtil"
	jwtPkg "VisageAuth/pkg/jwt"
	"VisageAuth/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AuthHandler) HandleRegister(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing account registration request")

	var req auth.RegisterAccountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.authService.Account().Register(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "register_account")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *AuthHandler) HandleListAccounts(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	res, err := h.authService.Account().List(c, page, limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_accounts")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AuthHandler) HandleGetAccountById(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var accountID int64
	paramID := ctx.Params("id")

	if paramID != "" && paramID != "me" {
		parsed, err := strconv.ParseInt(paramID, 10, 64)
		if err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
		accountID = parsed
	} else {
		accountData, err := jwtPkg.GetAccountLoginData(ctx)
		if err != nil {
			return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
		}
		accountID = accountData.ID
	}

	res, err := h.authService.Account().GetByID(c, accountID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_account_by_id")
	}

	if res.ProfilePhoto != "" {
		presignedURL, err := h.s3Client.PresignUrl(res.ProfilePhoto)
		if err != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err.Error(),
				"path":       ctx.Path(),
			}).Warn("Failed to presign URL for profile photo")
		} else {
			res.ProfilePhoto = presignedURL
		}
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AuthHandler) HandleUpdateAccount(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req auth.UpdateAccountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	res, err := h.authService.Account().Update(c, accountData.ID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_account")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AuthHandler) HandleDeactivateAccount(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	paramID := ctx.Params("id")
	accountID, err := strconv.ParseInt(paramID, 10, 64)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if accountData.ID != accountID {
		return errHandler.Handle(ctx, requestID, auth.ErrNotOwner, ctx.Path(), "deactivate_account")
	}

	if err := h.authService.Account().Deactivate(c, accountID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "deactivate_account")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, nil)
	}
}

func (h *AuthHandler) HandleUpdateProfilePhoto(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing update profile photo request")

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_form_file")
	}

	result, err := h.authService.Account().UpdateProfilePhoto(c, accountData.ID, file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_profile_photo")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}
