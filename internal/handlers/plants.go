package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// PlantHandler exposes plant care endpoints, including photo identification.
type PlantHandler struct {
	plants *services.PlantService
}

// NewPlantHandler configures a plant handler with required services.
func NewPlantHandler(plants *services.PlantService) *PlantHandler {
	return &PlantHandler{plants: plants}
}

type createPlantRequest struct {
	GroupID              *string `json:"groupId" validate:"omitempty,uuid4"`
	Name                 string  `json:"name" validate:"required,max=128"`
	Species              string  `json:"species" validate:"omitempty,max=256"`
	Location             string  `json:"location" validate:"omitempty,max=128"`
	WateringIntervalDays int     `json:"wateringIntervalDays" validate:"omitempty,min=0,max=365"`
	PhotoURL             string  `json:"photoUrl" validate:"omitempty,max=1024"`
}

type updatePlantRequest struct {
	Name                 *string `json:"name" validate:"omitempty,min=1,max=128"`
	Species              *string `json:"species" validate:"omitempty,max=256"`
	Location             *string `json:"location" validate:"omitempty,max=128"`
	WateringIntervalDays *int    `json:"wateringIntervalDays" validate:"omitempty,min=0,max=365"`
	PhotoURL             *string `json:"photoUrl" validate:"omitempty,max=1024"`
}

// Create registers a plant in the requested scope.
func (h *PlantHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createPlantRequest
	if !bindAndValidate(c, &body) {
		return
	}

	plant, err := h.plants.Create(requestContext(c), userID, services.CreatePlantInput{
		GroupID:              body.GroupID,
		Name:                 body.Name,
		Species:              body.Species,
		Location:             body.Location,
		WateringIntervalDays: body.WateringIntervalDays,
		PhotoURL:             body.PhotoURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, plant)
}

// List returns plants in the selected scope.
func (h *PlantHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if groupID := optionalGroupID(c); groupID != nil {
		plants, err := h.plants.ListForGroup(requestContext(c), userID, *groupID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, plants)
		return
	}

	plants, err := h.plants.ListPersonal(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, plants)
}

// Get returns a single plant.
func (h *PlantHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plant, err := h.plants.GetByID(requestContext(c), userID, c.Param("plantID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, plant)
}

// Update modifies a plant. Setting species by hand clears the AI flag.
func (h *PlantHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updatePlantRequest
	if !bindAndValidate(c, &body) {
		return
	}

	plant, err := h.plants.Update(requestContext(c), userID, c.Param("plantID"), services.UpdatePlantInput{
		Name:                 body.Name,
		Species:              body.Species,
		Location:             body.Location,
		WateringIntervalDays: body.WateringIntervalDays,
		PhotoURL:             body.PhotoURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, plant)
}

// Water stamps the plant's last watering time.
func (h *PlantHandler) Water(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plant, err := h.plants.Water(requestContext(c), userID, c.Param("plantID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, plant)
}

// Identify runs photo identification and applies the result to the plant.
func (h *PlantHandler) Identify(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body imagePayload
	if !bindAndValidate(c, &body) {
		return
	}

	image, err := decodeImagePayload(body)
	if err != nil {
		response.Error(c, err)
		return
	}

	plant, identification, err := h.plants.Identify(requestContext(c), userID, c.Param("plantID"), image)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"plant":          plant,
		"identification": identification,
	})
}

// Delete removes a plant.
func (h *PlantHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.plants.Delete(requestContext(c), userID, c.Param("plantID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
