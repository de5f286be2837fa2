package handlers

import (
	"errors"
	"net/http"

	"rtr_earnings/internal/domain"
	"rtr_earnings/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) DailyRewardStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.RewardService.DailyRewardStatus(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reward status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) ClaimDailyReward(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	claim, err := h.RewardService.ClaimDailyReward(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRewardDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "daily reward is disabled"})
		case errors.Is(err, service.ErrCooldownActive):
			c.JSON(http.StatusConflict, gin.H{"error": "reward already claimed, try again later"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claim failed"})
		}
		return
	}

	c.JSON(http.StatusOK, claim)
}

func (h *Handler) SpinWheelStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.RewardService.SpinWheelStatus(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load spin status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) Spin(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.RewardService.Spin(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSpinDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "spin wheel is disabled"})
		case errors.Is(err, service.ErrNoSpinsLeft):
			c.JSON(http.StatusConflict, gin.H{"error": "no spins left today"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "spin failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) SpinHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	spins, err := h.RewardRepo.GetSpinsByUserID(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load spin history"})
		return
	}
	if spins == nil {
		spins = []domain.SpinResult{}
	}

	c.JSON(http.StatusOK, gin.H{"spins": spins})
}
