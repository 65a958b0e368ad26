// Package http содержит локальную консоль: JSON-маршруты поверх представлений заметок.
package http

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"sharenotes/internal/client/adapters/http/middleware"
	"sharenotes/internal/client/app/access"
	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/app/views"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/api"
	"sharenotes/pkg/logger"
)

// Константы ошибок и сообщений для логирования.
const (
	LogHandlerListNotes   = "handling list notes request"
	LogHandlerGetNote     = "handling get note request"
	LogHandlerEditNote    = "handling edit note request"
	LogHandlerSaveNote    = "handling save note request"
	LogHandlerDeleteNote  = "handling delete note request"
	LogHandlerPublicNote  = "handling public note request"
	LogHandlerUnlockNote  = "handling public note unlock request"
	LogValidationRejected = "note form rejected"

	ErrMsgInvalidNoteID      = "invalid note id"
	ErrMsgInvalidPagination  = "invalid pagination parameters"
	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgValidation         = "validation failed"
	ErrMsgNoteNotLoaded      = "note is not loaded"
)

// maxPublicSessions ограничивает число открытых сессий публичного доступа.
const maxPublicSessions = 256

// Deps - зависимости обработчиков консоли.
type Deps struct {
	Store    *store.Store
	Users    api.UsersAPI
	Limiter  *access.Limiter
	Account  entities.Account
	Location *time.Location
	Dismiss  string
	// ConsoleToken, если задан, требуется в заголовке Authorization.
	ConsoleToken string
}

// Handler обрабатывает запросы консоли для одного настроенного аккаунта.
// Каждый запрос работает со своим представлением, кроме сессий публичного
// доступа, которые хранят окно ввода пароля между запросами.
type Handler struct {
	deps Deps
	life context.Context

	listMu     sync.Mutex
	listParams api.ListParams

	publicMu  sync.Mutex
	public    map[int64]*publicSession
	publicSeq uint64
}

// publicSession - окно ввода пароля заметки. Запросы к одной сессии
// выполняются по очереди.
type publicSession struct {
	mu   sync.Mutex
	view *views.PublicView
	used uint64
}

// NewHandler создает обработчик. Сессии публичного доступа живут до отмены ctx.
func NewHandler(ctx context.Context, deps Deps) *Handler {
	return &Handler{
		deps:   deps,
		life:   ctx,
		public: make(map[int64]*publicSession),
	}
}

// redirect запоминает маршрут, на который представление перевело пользователя.
type redirect struct {
	mu    sync.Mutex
	route string
}

func (r *redirect) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
}

func (r *redirect) get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

// Response - ответ консоли.
type Response struct {
	View     any    `json:"view"`
	Redirect string `json:"redirect,omitempty"`
}

func badRequest(ctx fiber.Ctx, message string) error {
	if err := ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message}); err != nil {
		return fmt.Errorf("failed to send bad request response: %w", err)
	}
	return nil
}

// stateStatus сопоставляет ошибку хранилища со статусом ответа.
func stateStatus(st store.State) int {
	switch {
	case st.ErrorMessage == "":
		return fiber.StatusOK
	case st.ErrorStatus != 0:
		return st.ErrorStatus
	default:
		return fiber.StatusBadGateway
	}
}

func (h *Handler) send(ctx fiber.Ctx, view any, route string) error {
	status := stateStatus(h.deps.Store.Snapshot())
	if err := ctx.Status(status).JSON(Response{View: view, Redirect: route}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func noteID(ctx fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	return id, err == nil
}

func listParams(ctx fiber.Ctx) (api.ListParams, error) {
	params := api.ListParams{Sort: ctx.Query("sort")}
	for name, target := range map[string]**int{"page": &params.Page, "size": &params.Size} {
		raw := ctx.Query(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return api.ListParams{}, fmt.Errorf("%s: %q", name, raw)
		}
		*target = &value
	}
	return params, nil
}

// ListNotes отображает список заметок.
func (h *Handler) ListNotes(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ListNotes"))
	log.Debug(requestCtx, LogHandlerListNotes)

	params, err := listParams(ctx)
	if err != nil {
		log.Warn(requestCtx, ErrMsgInvalidPagination, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidPagination)
	}

	h.listMu.Lock()
	h.listParams = params
	h.listMu.Unlock()

	return h.showList(ctx, params)
}

// RefreshNotes повторно загружает список с параметрами последнего отображения.
func (h *Handler) RefreshNotes(ctx fiber.Ctx) error {
	h.listMu.Lock()
	params := h.listParams
	h.listMu.Unlock()

	return h.showList(ctx, params)
}

func (h *Handler) showList(ctx fiber.Ctx, params api.ListParams) error {
	v := views.NewListView(h.deps.Store, nil)
	defer v.Unmount()
	v.Mount(middleware.RequestContext(ctx), params)
	v.Wait()
	return h.send(ctx, v.Render(), "")
}

// GetNote отображает заметку.
func (h *Handler) GetNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerGetNote)

	id, ok := noteID(ctx)
	if !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	v := views.NewDetailView(h.deps.Store, nil)
	defer v.Unmount()
	v.Mount(requestCtx, id)
	v.Wait()
	return h.send(ctx, v.Render(), "")
}

// NewNote отображает пустую форму.
func (h *Handler) NewNote(ctx fiber.Ctx) error {
	return h.editForm(ctx, "")
}

// EditNote отображает форму редактирования.
func (h *Handler) EditNote(ctx fiber.Ctx) error {
	if _, ok := noteID(ctx); !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}
	return h.editForm(ctx, ctx.Params("id"))
}

func (h *Handler) editForm(ctx fiber.Ctx, id string) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerEditNote, zap.String("note_id", id))

	v := views.NewEditView(h.deps.Store, h.deps.Users, nil, h.deps.Location)
	defer v.Unmount()
	if err := v.Mount(requestCtx, id); err != nil {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}
	v.Wait()
	return h.send(ctx, v.Render(), "")
}

// CreateNote сохраняет новую заметку.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	return h.saveNote(ctx, "")
}

// UpdateNote сохраняет существующую заметку.
func (h *Handler) UpdateNote(ctx fiber.Ctx) error {
	if _, ok := noteID(ctx); !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}
	return h.saveNote(ctx, ctx.Params("id"))
}

func (h *Handler) saveNote(ctx fiber.Ctx, id string) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.SaveNote"), zap.String("note_id", id))
	log.Debug(requestCtx, LogHandlerSaveNote)

	var form entities.NoteForm
	if err := ctx.Bind().Body(&form); err != nil {
		log.Warn(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	nav := &redirect{}
	v := views.NewEditView(h.deps.Store, nil, nav, h.deps.Location)
	defer v.Unmount()
	if err := v.Mount(requestCtx, id); err != nil {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}
	v.Wait()
	if st := h.deps.Store.Snapshot(); st.ErrorMessage != "" {
		return h.send(ctx, v.Render(), "")
	}

	if err := v.Save(requestCtx, form, h.deps.Account); err != nil {
		if errors.Is(err, views.ErrNoteNotLoaded) {
			log.Warn(requestCtx, ErrMsgNoteNotLoaded, zap.Error(err))
			if err := ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ErrMsgNoteNotLoaded}); err != nil {
				return fmt.Errorf("failed to send conflict response: %w", err)
			}
			return nil
		}
		var fields entities.ValidationErrors
		if errors.As(err, &fields) {
			log.Info(requestCtx, LogValidationRejected, zap.Error(err))
			if err := ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  ErrMsgValidation,
				"fields": fields,
			}); err != nil {
				return fmt.Errorf("failed to send validation response: %w", err)
			}
			return nil
		}
		return badRequest(ctx, err.Error())
	}
	v.Wait()

	return h.send(ctx, h.deps.Store.Snapshot(), nav.get())
}

// ConfirmDelete отображает подтверждение удаления.
func (h *Handler) ConfirmDelete(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	id, ok := noteID(ctx)
	if !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	v := views.NewDeleteView(h.deps.Store, nil)
	defer v.Unmount()
	v.Mount(requestCtx, id)
	v.Wait()
	return h.send(ctx, v.Render(), "")
}

// DeleteNote удаляет заметку.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerDeleteNote)

	id, ok := noteID(ctx)
	if !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	nav := &redirect{}
	v := views.NewDeleteView(h.deps.Store, nav)
	defer v.Unmount()
	v.Mount(requestCtx, id)
	v.Wait()
	if st := h.deps.Store.Snapshot(); st.ErrorMessage != "" {
		return h.send(ctx, v.Render(), "")
	}

	if err := v.Confirm(requestCtx); err != nil {
		return h.send(ctx, v.Render(), "")
	}
	v.Wait()
	return h.send(ctx, v.Render(), nav.get())
}

// session возвращает сессию публичного доступа к заметке id. При
// переполнении вытесняется сессия, которая дольше всех не использовалась.
func (h *Handler) session(id int64) *publicSession {
	h.publicMu.Lock()
	defer h.publicMu.Unlock()

	session, ok := h.public[id]
	if !ok {
		if len(h.public) >= maxPublicSessions {
			h.evictPublicSession()
		}
		session = &publicSession{view: views.NewPublicView(h.deps.Store, nil, h.deps.Limiter, h.deps.Dismiss)}
		session.view.Mount(h.life, id)
		h.public[id] = session
	}
	h.publicSeq++
	session.used = h.publicSeq
	return session
}

func (h *Handler) evictPublicSession() {
	var (
		oldestID int64
		oldest   *publicSession
	)
	for id, session := range h.public {
		if oldest == nil || session.used < oldest.used {
			oldestID, oldest = id, session
		}
	}
	if oldest != nil {
		oldest.view.Unmount()
		delete(h.public, oldestID)
	}
}

func (h *Handler) sendPublic(ctx fiber.Ctx, status int, r views.PublicRender) error {
	if err := ctx.Status(status).JSON(Response{View: r}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// PublicNote открывает страницу публичной заметки: окно ввода пароля
// показывается заново при каждом открытии.
func (h *Handler) PublicNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerPublicNote)

	id, ok := noteID(ctx)
	if !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	session := h.session(id)
	session.mu.Lock()
	defer session.mu.Unlock()
	session.view.Mount(h.life, id)
	return h.sendPublic(ctx, fiber.StatusOK, session.view.Render())
}

// OpenPrompt повторно открывает окно ввода пароля.
func (h *Handler) OpenPrompt(ctx fiber.Ctx) error {
	id, ok := noteID(ctx)
	if !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	session := h.session(id)
	session.mu.Lock()
	defer session.mu.Unlock()
	session.view.OpenPrompt()
	return h.sendPublic(ctx, fiber.StatusOK, session.view.Render())
}

// UnlockRequest - тело запроса открытия публичной заметки.
type UnlockRequest struct {
	Password string `json:"password"`
}

// UnlockNote отправляет пароль публичной заметки.
func (h *Handler) UnlockNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.UnlockNote"))
	log.Debug(requestCtx, LogHandlerUnlockNote)

	id, ok := noteID(ctx)
	if !ok {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	var req UnlockRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	session := h.session(id)
	session.mu.Lock()
	defer session.mu.Unlock()

	v := session.view
	status := fiber.StatusOK
	if err := v.Submit(requestCtx, req.Password); err != nil {
		switch {
		case errors.Is(err, access.ErrTooManyAttempts):
			status = fiber.StatusTooManyRequests
		case errors.Is(err, entities.ErrValidation):
			status = fiber.StatusBadRequest
		default:
			return fmt.Errorf("submit public password: %w", err)
		}
	}
	v.Wait()

	r := v.Render()
	if r.State == views.Unlocked {
		// Содержимое отдается только в этом ответе, дальше снова нужен пароль.
		v.Mount(h.life, id)
	} else if status == fiber.StatusOK {
		status = fiber.StatusUnauthorized
	}
	return h.sendPublic(ctx, status, r)
}

// State возвращает снимок хранилища.
func (h *Handler) State(ctx fiber.Ctx) error {
	if err := ctx.JSON(h.deps.Store.Snapshot()); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// Health сообщает, что консоль работает.
func (h *Handler) Health(ctx fiber.Ctx) error {
	if err := ctx.JSON(fiber.Map{"status": "ok"}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
