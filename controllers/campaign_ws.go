package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"prizewheel/services"
	"prizewheel/utils"
	"prizewheel/ws"
)

// CampaignWSController streams live plays to an operator dashboard
type CampaignWSController struct {
	Manager *services.CampaignManager
	Hub     *ws.Hub
}

func NewCampaignWSController(manager *services.CampaignManager, hub *ws.Hub) *CampaignWSController {
	return &CampaignWSController{Manager: manager, Hub: hub}
}

// Upgrade checks ownership before handing the request to the websocket handler
func (wc *CampaignWSController) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	operator := currentOperator(c)
	campaignID, err := utils.ParseUint(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", nil)
	}

	stats, err := wc.Manager.Stats(c.UserContext(), operator.ID, campaignID)
	if err != nil {
		return respondError(c, "live_campaign", err)
	}
	c.Locals("campaignID", campaignID)
	c.Locals("snapshot", stats)
	return c.Next()
}

// HandleCampaignLiveWS sends a stats snapshot, then every play event for the campaign
func (wc *CampaignWSController) HandleCampaignLiveWS(conn *websocket.Conn) {
	defer conn.Close()

	campaignID, _ := conn.Locals("campaignID").(uint)
	log := logrus.WithField("campaign_id", campaignID)

	sub := wc.Hub.Subscribe(campaignID)
	defer wc.Hub.Unsubscribe(campaignID, sub)

	if err := conn.WriteJSON(ws.Message{Type: "snapshot", Data: conn.Locals("snapshot")}); err != nil {
		log.WithError(err).Debug("ws: snapshot write failed")
		return
	}

	// the client only ever closes; reads just detect that
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws: write failed")
				return
			}
		}
	}
}
