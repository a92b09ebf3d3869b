package authHandler

import (
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"VisageAuth/internal/api/auth"
	contextPkg "VisageAuth/pkg/context"
	"VisageAuth/pkg/descriptor"
	"VisageAuth/pkg/handlerUtil"
	jwtPkg "VisageAuth/pkg/jwt"
	"VisageAuth/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// HandleEnrollFace accepts either a JSON body or a multipart form carrying an
// optional capture photo next to the descriptor.
func (h *AuthHandler) HandleEnrollFace(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req auth.EnrollFaceRequest
	var photoFile *multipart.FileHeader

	if strings.HasPrefix(ctx.Get("Content-Type"), "multipart/form-data") {
		vec, err := descriptor.Decode(ctx.FormValue("face_descriptor"))
		if err != nil {
			return errHandler.Handle(ctx, requestID, auth.ErrInvalidDescriptor, ctx.Path(), "parse_face_descriptor")
		}
		req.FaceDescriptor = vec
		req.IsPrimary = ctx.FormValue("is_primary") == "true"

		if file, err := ctx.FormFile("photo"); err == nil {
			photoFile = file
		}
	} else {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.authService.Face().Enroll(c, accountData.ID, req, photoFile)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "enroll_face")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *AuthHandler) HandleEnrollFaceBatch(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req auth.EnrollFaceBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"account_id": accountData.ID,
		"count":      len(req.FaceDescriptors),
	}).Debug("Processing batch enrollment request")

	res, err := h.authService.Face().EnrollBatch(c, accountData.ID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "enroll_face_batch")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *AuthHandler) HandleListMyEnrollments(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	res, err := h.authService.Face().ListByAccount(c, accountData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_enrollments")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AuthHandler) HandleListAccountEnrollments(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	accountID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.authService.Face().ListByAccount(c, accountID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_account_enrollments")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AuthHandler) HandleSetPrimary(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	enrollmentID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	updated, err := h.authService.Face().SetPrimary(c, accountData.ID, enrollmentID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "set_primary")
	}

	if !updated {
		return errHandler.Handle(ctx, requestID, auth.ErrEnrollmentNotFound, ctx.Path(), "set_primary")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"updated": true,
		})
	}
}

func (h *AuthHandler) HandleDeleteEnrollment(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	enrollmentID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	deleted, err := h.authService.Face().Delete(c, accountData.ID, enrollmentID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_enrollment")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"deleted": deleted,
		})
	}
}

func (h *AuthHandler) HandleDeleteAllEnrollments(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	accountData, err := jwtPkg.GetAccountLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	deleted, err := h.authService.Face().DeleteAllForAccount(c, accountData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_all_enrollments")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"deleted": deleted,
		})
	}
}

// HandleTestRecognition runs the identification scan without issuing a token,
// so an operator can probe the matcher with a fresh capture.
func (h *AuthHandler) HandleTestRecognition(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req auth.FaceLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.authService.Face().Match(c, req.FaceDescriptor)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "test_recognition")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AuthHandler) HandleEnrollmentStats(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	res, err := h.authService.Face().Stats(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "enrollment_stats")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
