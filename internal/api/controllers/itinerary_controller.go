package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripwise/internal/models/request_models"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

type ItineraryController struct {
	itineraryService services.ItineraryServiceInterface
}

func NewItineraryController(itineraryService services.ItineraryServiceInterface) *ItineraryController {
	return &ItineraryController{
		itineraryService: itineraryService,
	}
}

// GenerateItinerary godoc
// @Summary Generate an itinerary
// @Description Score, filter and schedule the candidate destinations into days. When a goal type is given the goal is created on first use and the itinerary stored as its active version.
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.GenerateItineraryRequest true "Preferences, candidates and optional goal type"
// @Success 200 {object} response_models.ItineraryResult
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itineraries/generate [post]
func (i *ItineraryController) GenerateItinerary(c *gin.Context) {
	var req request_models.GenerateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := i.itineraryService.Generate(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Itinerary generated successfully")
}
