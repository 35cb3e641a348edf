package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dm "tripwise/internal/models/domain_models"
	"tripwise/internal/models/request_models"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

type GoalController struct {
	goalService services.GoalServiceInterface
}

func NewGoalController(goalService services.GoalServiceInterface) *GoalController {
	return &GoalController{
		goalService: goalService,
	}
}

// CreateGoal godoc
// @Summary Create a travel goal
// @Description Create the goal of the given type for the authenticated user, or return the existing one
// @Tags Goal
// @Accept json
// @Produce json
// @Param request body request_models.CreateGoalRequest true "Goal type and optional target overrides"
// @Success 200 {object} response_models.GoalSnapshot
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /goals [post]
func (g *GoalController) CreateGoal(c *gin.Context) {
	var req request_models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "goal_type is required")
		return
	}

	goalType, err := services.ParseGoalType(req.GoalType)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	goal, err := g.goalService.EnsureGoal(c.Request.Context(), c.GetString("user_id"), goalType, req.Overrides)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, services.ToGoalSnapshot(goal), "Goal ready")
}

// GetGoal godoc
// @Summary Get a goal
// @Tags Goal
// @Produce json
// @Param goalId path string true "Goal ID"
// @Success 200 {object} response_models.GoalSnapshot
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /goals/{goalId} [get]
func (g *GoalController) GetGoal(c *gin.Context) {
	goal, err := g.goalService.GetGoal(c.Request.Context(), c.GetString("user_id"), c.Param("goalId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, goal, "Goal fetched successfully")
}

// GetReport godoc
// @Summary Get the progress report of a goal
// @Tags Goal
// @Produce json
// @Param goalId path string true "Goal ID"
// @Success 200 {object} response_models.ProgressReport
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /goals/{goalId}/report [get]
func (g *GoalController) GetReport(c *gin.Context) {
	report, err := g.goalService.GetReport(c.Request.Context(), c.GetString("user_id"), c.Param("goalId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Report fetched successfully")
}

// UpdateStatus godoc
// @Summary Change the status of a goal
// @Tags Goal
// @Accept json
// @Produce json
// @Param goalId path string true "Goal ID"
// @Param request body request_models.UpdateGoalStatusRequest true "active, completed, paused or cancelled"
// @Success 200 {object} response_models.GoalSnapshot
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /goals/{goalId}/status [patch]
func (g *GoalController) UpdateStatus(c *gin.Context) {
	var req request_models.UpdateGoalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "status is required")
		return
	}

	goal, err := g.goalService.SetStatus(c.Request.Context(), c.GetString("user_id"), c.Param("goalId"), req.Status)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, goal, "Goal status updated")
}

// UpdateProgress godoc
// @Summary Report progress on a goal
// @Description Records one metric observation, re-evaluates milestones and replans the itinerary when progress drifts
// @Tags Goal
// @Accept json
// @Produce json
// @Param goalId path string true "Goal ID"
// @Param request body request_models.UpdateProgressRequest true "Metric, value and observation time"
// @Success 200 {object} response_models.ProgressUpdateResult
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /goals/{goalId}/progress [post]
func (g *GoalController) UpdateProgress(c *gin.Context) {
	var req request_models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "metric is required")
		return
	}

	update := dm.ProgressUpdate{
		GoalID:     c.Param("goalId"),
		Metric:     dm.Metric(req.Metric),
		Value:      req.Value,
		Text:       req.Text,
		VisitedIDs: req.VisitedIDs,
	}
	if req.Timestamp != nil {
		update.Timestamp = *req.Timestamp
	}

	result, err := g.goalService.UpdateProgress(c.Request.Context(), c.GetString("user_id"), update)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, "Progress recorded")
}

// IngestProgress godoc
// @Summary Ingest a batch of progress updates
// @Description Applies updates in timestamp order; unknown goals and stale updates are skipped
// @Tags Goal
// @Accept json
// @Produce json
// @Param request body request_models.BatchProgressRequest true "Updates"
// @Success 200 {object} response_models.BatchProgressResult
// @Security BearerAuth
// @Router /progress/batch [post]
func (g *GoalController) IngestProgress(c *gin.Context) {
	var req request_models.BatchProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "updates are required")
		return
	}
	result := g.goalService.ApplyUpdates(c.Request.Context(), req.Updates)
	utils.RespondSuccess(c, result, "Batch processed")
}

// GetItinerary godoc
// @Summary Get the active itinerary of a goal
// @Tags Goal
// @Produce json
// @Param goalId path string true "Goal ID"
// @Success 200 {object} response_models.ItineraryVersionResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /goals/{goalId}/itinerary [get]
func (g *GoalController) GetItinerary(c *gin.Context) {
	version, err := g.goalService.LatestItinerary(c.Request.Context(), c.GetString("user_id"), c.Param("goalId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, version, "Itinerary fetched successfully")
}

// RollbackItinerary godoc
// @Summary Roll back to the previous itinerary version
// @Tags Goal
// @Produce json
// @Param goalId path string true "Goal ID"
// @Success 200 {object} response_models.ItineraryVersionResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /goals/{goalId}/itinerary/rollback [post]
func (g *GoalController) RollbackItinerary(c *gin.Context) {
	version, err := g.goalService.RollbackItinerary(c.Request.Context(), c.GetString("user_id"), c.Param("goalId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, version, "Itinerary rolled back")
}
