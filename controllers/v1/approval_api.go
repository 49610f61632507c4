package apiv1

import (
	"strconv"
	"strings"

	"jml-lite/controllers"
	"jml-lite/lib/approval"
	"jml-lite/lib/directory"
	"jml-lite/lib/workflow"
	"jml-lite/middleware"
	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	workflowapimodels "jml-lite/models/api/workflow"

	"github.com/gofiber/fiber/v2"
)

type approvalApiController struct {
	controllers.BaseAPIController
}

func InitApprovalApiRouters(app *fiber.App) {
	controller := approvalApiController{}
	app.Route("approvals", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("list", controller.filter)
		router.Get("stats", controller.stats)
		router.Get("pending", controller.pending)
		router.Post("", controller.create)
		router.Post("system_access", controller.systemAccess)
		router.Post("equipment", controller.equipment)
		router.Post("expire", controller.expire)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Post("approve", controller.approve)
			idRoute.Post("reject", controller.reject)
			idRoute.Post("delegate", controller.delegate)
			idRoute.Post("cancel", controller.cancel)
			idRoute.Post("decision", controller.decision) // решение с уведомлением инициатора
		})
	})
}

// list фильтр из строки запроса: status, type, priority через запятую, approver_id, requested_by_id
func (c *approvalApiController) list(ctx *fiber.Ctx) error {
	filter := approvalapimodels.ApprovalFilter{}
	for _, v := range splitQuery(ctx.Query("status")) {
		filter.Statuses = append(filter.Statuses, models.ApprovalStatus(v))
	}
	for _, v := range splitQuery(ctx.Query("type")) {
		filter.Types = append(filter.Types, models.ApprovalType(v))
	}
	for _, v := range splitQuery(ctx.Query("priority")) {
		filter.Priorities = append(filter.Priorities, models.ApprovalPriority(v))
	}
	if id := queryUint(ctx, "approver_id"); id != nil {
		filter.ApproverID = id
	}
	if id := queryUint(ctx, "requested_by_id"); id != nil {
		filter.RequestedByID = id
	}
	return controllers.SendList(ctx, approval.Instance.GetApprovals(filter))
}

func (c *approvalApiController) filter(ctx *fiber.Ctx) error {
	var payload approvalapimodels.ApprovalFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	return controllers.SendList(ctx, approval.Instance.GetApprovals(payload))
}

func (c *approvalApiController) stats(ctx *fiber.Ctx) error {
	return c.SendOK(ctx, approval.Instance.GetApprovalStats(queryUint(ctx, "approver_id")))
}

func (c *approvalApiController) pending(ctx *fiber.Ctx) error {
	user := middleware.GetUser(ctx)
	return controllers.SendList(ctx, approval.Instance.GetPendingForApprover(user.ID))
}

func (c *approvalApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	result := approval.Instance.GetApproval(id)
	if result == nil {
		return c.SendFail(ctx, fiber.StatusNotFound, "запрос на согласование не найден")
	}
	return c.SendOK(ctx, result)
}

func (c *approvalApiController) create(ctx *fiber.Ctx) error {
	var payload approvalapimodels.ApprovalRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err := payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if payload.ApproverName == "" || payload.ApproverEmail == "" {
		approver, err := directory.Instance.GetUser(payload.ApproverID)
		if err != nil {
			return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения согласующего")
		}
		if approver == nil {
			return c.SendFail(ctx, fiber.StatusBadRequest, "согласующий не найден")
		}
		payload.ApproverName = approver.DisplayName
		payload.ApproverEmail = approver.Email
	}
	result := approval.Instance.CreateApproval(ctx.UserContext(), payload)
	if result == nil {
		return c.SendFail(ctx, fiber.StatusInternalServerError, "Ошибка создания запроса на согласование")
	}
	return c.SendOK(ctx, result)
}

func (c *approvalApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	var payload approvalapimodels.ApproveRequest
	if len(ctx.Body()) > 0 {
		if err = c.BodyParser(ctx, &payload); err != nil {
			return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
		}
	}
	user := middleware.GetUser(ctx)
	if !approval.Instance.Approve(ctx.UserContext(), id, payload.Comments, user.Name, user.ID) {
		return c.SendFail(ctx, fiber.StatusConflict, "запрос не может быть согласован")
	}
	return c.SendOK(ctx, nil)
}

func (c *approvalApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	var payload approvalapimodels.RejectRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err = payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	user := middleware.GetUser(ctx)
	if !approval.Instance.Reject(ctx.UserContext(), id, payload.Reason, user.Name, user.ID) {
		return c.SendFail(ctx, fiber.StatusConflict, "запрос не может быть отклонён")
	}
	return c.SendOK(ctx, nil)
}

func (c *approvalApiController) delegate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	var payload approvalapimodels.DelegateRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err = payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	delegate, err := directory.Instance.GetUser(payload.DelegateToID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения сотрудника")
	}
	if delegate == nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, "сотрудник не найден")
	}
	ok := approval.Instance.ProcessApproval(ctx.UserContext(), approvalapimodels.ApprovalAction{
		ApprovalID:      id,
		Action:          models.ApprovalActionDelegate,
		DelegateToID:    delegate.ID,
		DelegateToName:  delegate.DisplayName,
		DelegateToEmail: delegate.Email,
	})
	if !ok {
		return c.SendFail(ctx, fiber.StatusConflict, "запрос не может быть делегирован")
	}
	return c.SendOK(ctx, nil)
}

func (c *approvalApiController) cancel(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	ok := approval.Instance.ProcessApproval(ctx.UserContext(), approvalapimodels.ApprovalAction{
		ApprovalID: id,
		Action:     models.ApprovalActionCancel,
		Comments:   ctx.Query("comments"),
	})
	if !ok {
		return c.SendFail(ctx, fiber.StatusConflict, "запрос не может быть отменён")
	}
	return c.SendOK(ctx, nil)
}

func (c *approvalApiController) decision(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	var payload approvalapimodels.DecisionRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err = payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if !workflow.Instance.ProcessApprovalDecision(ctx.UserContext(), id, payload.Decision, payload.Comments) {
		return c.SendFail(ctx, fiber.StatusConflict, "решение по запросу не сохранено")
	}
	return c.SendOK(ctx, nil)
}

func (c *approvalApiController) systemAccess(ctx *fiber.Ctx) error {
	var payload workflowapimodels.SystemAccessRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err := payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if !workflow.Instance.RequestSystemAccessApproval(ctx.UserContext(), payload) {
		return c.SendFail(ctx, fiber.StatusInternalServerError, "Ошибка создания запроса доступа")
	}
	return c.SendOK(ctx, nil)
}

func (c *approvalApiController) equipment(ctx *fiber.Ctx) error {
	var payload workflowapimodels.EquipmentRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if err := payload.Validate(); err != nil {
		return c.SendFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	if !workflow.Instance.RequestEquipmentApproval(ctx.UserContext(), payload) {
		return c.SendFail(ctx, fiber.StatusInternalServerError, "Ошибка создания запроса оборудования")
	}
	return c.SendOK(ctx, nil)
}

func (c *approvalApiController) expire(ctx *fiber.Ctx) error {
	return c.SendOK(ctx, fiber.Map{"expired": approval.Instance.ExpireOverdueApprovals(ctx.UserContext())})
}

func splitQuery(value string) []string {
	result := []string{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func queryUint(ctx *fiber.Ctx, key string) *uint {
	value, err := strconv.ParseUint(ctx.Query(key), 10, 64)
	if err != nil || value == 0 {
		return nil
	}
	id := uint(value)
	return &id
}
