package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/response"
)

// WishlistHandler exposes wishlist endpoints.
type WishlistHandler struct {
	wishlist *services.WishlistService
}

// NewWishlistHandler configures a wishlist handler with required services.
func NewWishlistHandler(wishlist *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

type createWishlistItemRequest struct {
	GroupID  *string `json:"groupId" validate:"omitempty,uuid4"`
	Title    string  `json:"title" validate:"required,max=256"`
	URL      string  `json:"url" validate:"omitempty,max=1024"`
	Price    float64 `json:"price" validate:"omitempty,min=0"`
	Priority int     `json:"priority" validate:"omitempty,min=0,max=10"`
}

type updateWishlistItemRequest struct {
	Title     *string  `json:"title" validate:"omitempty,min=1,max=256"`
	URL       *string  `json:"url" validate:"omitempty,max=1024"`
	Price     *float64 `json:"price" validate:"omitempty,min=0"`
	Priority  *int     `json:"priority" validate:"omitempty,min=0,max=10"`
	Purchased *bool    `json:"purchased"`
}

// Create adds a wishlist item in the requested scope.
func (h *WishlistHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body createWishlistItemRequest
	if !bindAndValidate(c, &body) {
		return
	}

	item, err := h.wishlist.Create(requestContext(c), userID, services.CreateWishlistItemInput{
		GroupID:  body.GroupID,
		Title:    body.Title,
		URL:      body.URL,
		Price:    body.Price,
		Priority: body.Priority,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// List returns wishlist items in the selected scope.
func (h *WishlistHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if groupID := optionalGroupID(c); groupID != nil {
		items, err := h.wishlist.ListForGroup(requestContext(c), userID, *groupID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, items)
		return
	}

	items, err := h.wishlist.ListPersonal(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Update modifies a wishlist item.
func (h *WishlistHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body updateWishlistItemRequest
	if !bindAndValidate(c, &body) {
		return
	}

	item, err := h.wishlist.Update(requestContext(c), userID, c.Param("itemID"), services.UpdateWishlistItemInput{
		Title:     body.Title,
		URL:       body.URL,
		Price:     body.Price,
		Priority:  body.Priority,
		Purchased: body.Purchased,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// Delete removes a wishlist item.
func (h *WishlistHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.wishlist.Delete(requestContext(c), userID, c.Param("itemID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
