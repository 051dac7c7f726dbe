package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/config"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/models"
	"github.com/trungducnguyen4/A-microservices-based-e-learning-platform-sub001/pkg/roomstate"
)

// TranscriptController lets clients push and read transcript segments of a
// live room.
type TranscriptController struct {
	AppConfig  *config.AppConfig
	RoomModel  *models.RoomModel
	StateStore *roomstate.Store
	logger     *logrus.Entry
}

func NewTranscriptController(config *config.AppConfig, rm *models.RoomModel, store *roomstate.Store, logger *logrus.Logger) *TranscriptController {
	return &TranscriptController{
		AppConfig:  config,
		RoomModel:  rm,
		StateStore: store,
		logger:     logger.WithField("controller", "transcript"),
	}
}

type TranscriptSegment struct {
	Index           *int   `json:"index"`
	Text            string `json:"text"`
	Timestamp       string `json:"timestamp"`
	SpeakerIdentity string `json:"speakerIdentity,omitempty"`
	SpeakerName     string `json:"speakerName,omitempty"`
}

func (s *TranscriptSegment) toSegment() (roomstate.Segment, bool) {
	if s == nil || s.Index == nil || strings.TrimSpace(s.Text) == "" || s.Timestamp == "" {
		return roomstate.Segment{}, false
	}
	return roomstate.Segment{
		Id:              uuid.NewString(),
		Text:            s.Text,
		Order:           *s.Index,
		Timestamp:       s.Timestamp,
		SpeakerIdentity: s.SpeakerIdentity,
		SpeakerName:     s.SpeakerName,
	}, true
}

type SaveSegmentReq struct {
	RoomCode string             `json:"roomCode"`
	Segment  *TranscriptSegment `json:"segment"`
}

type SaveSegmentsReq struct {
	RoomCode string               `json:"roomCode"`
	Segments []*TranscriptSegment `json:"segments"`
}

type transcriptRes struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Count   int    `json:"count"`
}

type transcriptListRes struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Data    []roomstate.Segment `json:"data"`
}

// liveRoom resolves code against the registry. An empty code means the
// response has been written.
func (tc *TranscriptController) liveRoom(c *fiber.Ctx, raw string) (string, error) {
	if tc.StateStore == nil {
		return "", sendCommonJsonResponse(c, fiber.StatusServiceUnavailable, false, "room state store not configured")
	}
	code, err := tc.RoomModel.NormalizeCode(raw)
	if err != nil {
		status, msg := errorStatus(err)
		return "", sendCommonJsonResponse(c, status, false, msg)
	}
	if _, ok := tc.RoomModel.Get(code); !ok {
		return "", sendCommonJsonResponse(c, fiber.StatusNotFound, false, config.RoomNotFound)
	}
	return code, nil
}

// HandleSaveSegment handles POST /transcript/save. A segment with an index
// already stored replaces the old one.
func (tc *TranscriptController) HandleSaveSegment(c *fiber.Ctx) error {
	req := new(SaveSegmentReq)
	if err := c.BodyParser(req); err != nil {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, err.Error())
	}
	seg, ok := req.Segment.toSegment()
	if !ok {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, config.InvalidSegment)
	}
	code, err := tc.liveRoom(c, req.RoomCode)
	if code == "" {
		return err
	}

	st, err := tc.StateStore.UpsertSegments(c.UserContext(), code, []roomstate.Segment{seg})
	if err != nil {
		tc.logger.WithError(err).WithField("roomCode", code).Errorln("failed to save transcript segment")
		return sendCommonJsonResponse(c, fiber.StatusInternalServerError, false, err.Error())
	}
	return c.JSON(&transcriptRes{
		Success: true,
		Msg:     "segment saved",
		Count:   len(st.Transcript),
	})
}

// HandleSaveSegments handles POST /transcript/save-batch. Invalid segments
// are skipped, Count is the number actually saved.
func (tc *TranscriptController) HandleSaveSegments(c *fiber.Ctx) error {
	req := new(SaveSegmentsReq)
	if err := c.BodyParser(req); err != nil {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, err.Error())
	}
	if len(req.Segments) == 0 {
		return sendCommonJsonResponse(c, fiber.StatusBadRequest, false, config.InvalidSegment)
	}
	code, err := tc.liveRoom(c, req.RoomCode)
	if code == "" {
		return err
	}

	segs := make([]roomstate.Segment, 0, len(req.Segments))
	for _, s := range req.Segments {
		if seg, ok := s.toSegment(); ok {
			segs = append(segs, seg)
		}
	}
	if len(segs) > 0 {
		if _, err := tc.StateStore.UpsertSegments(c.UserContext(), code, segs); err != nil {
			tc.logger.WithError(err).WithField("roomCode", code).Errorln("failed to save transcript segments")
			return sendCommonJsonResponse(c, fiber.StatusInternalServerError, false, err.Error())
		}
	}
	return c.JSON(&transcriptRes{
		Success: true,
		Msg:     "segments saved",
		Count:   len(segs),
	})
}

// HandleGetTranscript handles GET /transcript/:roomCode. Segments are in
// index order; a room without saved state has an empty transcript.
func (tc *TranscriptController) HandleGetTranscript(c *fiber.Ctx) error {
	if tc.StateStore == nil {
		return sendCommonJsonResponse(c, fiber.StatusServiceUnavailable, false, "room state store not configured")
	}
	st, err := tc.StateStore.Get(c.UserContext(), c.Params("roomCode"))
	switch {
	case errors.Is(err, roomstate.ErrNotFound):
		return c.JSON(&transcriptListRes{Success: true, Data: []roomstate.Segment{}})
	case err != nil:
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}
	return c.JSON(&transcriptListRes{
		Success: true,
		Count:   len(st.Transcript),
		Data:    st.Transcript,
	})
}

// HandleDeleteTranscript handles DELETE /transcript/:roomCode. Recording
// usage is kept.
func (tc *TranscriptController) HandleDeleteTranscript(c *fiber.Ctx) error {
	if tc.StateStore == nil {
		return sendCommonJsonResponse(c, fiber.StatusServiceUnavailable, false, "room state store not configured")
	}
	code := c.Params("roomCode")
	st, err := tc.StateStore.Get(c.UserContext(), code)
	switch {
	case errors.Is(err, roomstate.ErrNotFound):
		return c.JSON(&transcriptRes{Success: true, Msg: "nothing to delete"})
	case err != nil:
		status, msg := errorStatus(err)
		return sendCommonJsonResponse(c, status, false, msg)
	}

	deleted := len(st.Transcript)
	if deleted > 0 {
		if _, err := tc.StateStore.Save(c.UserContext(), code, roomstate.Patch{ClearTranscript: true}); err != nil {
			tc.logger.WithError(err).WithField("roomCode", code).Errorln("failed to clear transcript")
			return sendCommonJsonResponse(c, fiber.StatusInternalServerError, false, err.Error())
		}
	}
	return c.JSON(&transcriptRes{
		Success: true,
		Msg:     "transcript deleted",
		Count:   deleted,
	})
}
