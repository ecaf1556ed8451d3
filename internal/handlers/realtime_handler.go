package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/SAP-F-2025/quiz-service/internal/ledger"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// CheckOrigin is left nil, so only same-origin upgrades are accepted
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// LedgerMessage is pushed to the student whenever their submissions, the
// quizzes they can see or their enrollments change
type LedgerMessage struct {
	Type     string                         `json:"type"`
	Overview []ledger.QuizStatus            `json:"overview"`
	History  map[string][]models.Submission `json:"history"`
}

type RealtimeHandler struct {
	BaseHandler
	feed        repositories.ChangeFeed
	submissions repositories.SubmissionRepository
	quizService services.QuizService
}

func NewRealtimeHandler(feed repositories.ChangeFeed, submissions repositories.SubmissionRepository, quizService services.QuizService, logger utils.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		BaseHandler: NewBaseHandler(logger),
		feed:        feed,
		submissions: submissions,
		quizService: quizService,
	}
}

// StreamLedger upgrades to a websocket and sends the caller's ledger view on
// connect and after every change. Each message is a full snapshot.
// @Router /realtime/ledger [get]
func (h *RealtimeHandler) StreamLedger(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "Failed to upgrade connection")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log := h.log(c).With("user_id", actor.UserID)
	go readPump(conn, cancel)

	snapshots, err := repositories.WatchSnapshots(ctx, h.feed, models.CollectionSubmissions,
		func(ctx context.Context) ([]models.Submission, error) {
			return h.submissions.ListByStudent(ctx, actor.UserID)
		},
		func(err error) { log.Warn("Failed to load submissions snapshot", "error", err) },
	)
	if err != nil {
		log.LogError(err, "Failed to watch submissions")
		return
	}
	// Quiz edits change limits and lock state; enrollment changes change
	// which quizzes the student sees. The initial tick of each is dropped
	// because the first submissions snapshot already sends a full message.
	quizTicks, err := h.watch(ctx, models.CollectionQuizzes)
	if err != nil {
		log.LogError(err, "Failed to watch quizzes")
		return
	}
	enrollmentTicks, err := h.watch(ctx, models.CollectionClassEnrollments)
	if err != nil {
		log.LogError(err, "Failed to watch enrollments")
		return
	}

	view := ledger.NewStudentView(actor.UserID)
	received := false
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			view.Apply(snapshot)
			received = true
		case _, ok := <-quizTicks:
			if !ok {
				return
			}
			if !received {
				continue
			}
		case _, ok := <-enrollmentTicks:
			if !ok {
				return
			}
			if !received {
				continue
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case <-ctx.Done():
			return
		}

		msg, err := h.ledgerMessage(ctx, actor, view)
		if err != nil {
			log.Warn("Failed to build ledger message", "error", err)
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("Websocket write failed", "error", err)
			return
		}
	}
}

// watch subscribes to collection and consumes the initial tick
func (h *RealtimeHandler) watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	ticks, err := h.feed.Subscribe(ctx, collection)
	if err != nil {
		return nil, err
	}
	select {
	case <-ticks:
	case <-ctx.Done():
	}
	return ticks, nil
}

func (h *RealtimeHandler) ledgerMessage(ctx context.Context, actor services.Actor, view *ledger.StudentView) (*LedgerMessage, error) {
	quizzes, err := h.quizService.ListForStudent(ctx, actor)
	if err != nil {
		return nil, err
	}
	list := make([]models.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		list = append(list, *q)
	}
	return &LedgerMessage{
		Type:     "ledger",
		Overview: view.Overview(list),
		History:  view.VisibleHistory(list),
	}, nil
}

// readPump drains control frames and cancels the stream once the client goes
// away. Clients are not expected to send data.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
