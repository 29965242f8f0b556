package app

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"periodic-table-service/internal/domain"
)

// Surface is the presentation the controller reads tiles from and writes to.
// Implementations drop writes to slots they do not have.
type Surface interface {
	Tiles() []domain.TileNode
	SetText(slot domain.Slot, text string)
	SetStyle(slot domain.Slot, style string)
	SetVisible(slot domain.Slot, visible bool)
	SetMarker(ref string, marker domain.Marker, on bool)
}

// Modifiers carries the modifier keys of a key press.
type Modifiers struct {
	Ctrl bool
}

const (
	DefaultFeedbackDelay     = 1500 * time.Millisecond
	DefaultResetConfirmation = 1500 * time.Millisecond
	defaultSuccessEffect     = 300 * time.Millisecond
	defaultErrorEffect       = 500 * time.Millisecond
)

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the timer implementation.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithRandom replaces the question picker; pick must return a value in [0, n).
func WithRandom(pick func(n int) int) Option {
	return func(c *Controller) { c.pick = pick }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithLabels sets the display label set; empty labels keep their defaults.
func WithLabels(l domain.Labels) Option {
	return func(c *Controller) { c.labels = l.WithDefaults() }
}

// WithFeedbackDelay sets how long answer markers stay before the next question.
func WithFeedbackDelay(d time.Duration) Option {
	return func(c *Controller) { c.feedbackDelay = d }
}

// WithResetConfirmation sets how long the reset control shows its confirmation.
func WithResetConfirmation(d time.Duration) Option {
	return func(c *Controller) { c.resetConfirmation = d }
}

// WithEffectDurations sets the success and error effect durations.
func WithEffectDurations(success, failure time.Duration) Option {
	return func(c *Controller) {
		c.successEffect = success
		c.errorEffect = failure
	}
}

// Controller owns the info/quiz state machine of one presentation surface.
type Controller struct {
	mu        sync.Mutex
	surface   Surface
	elements  []domain.ElementEntry
	byRef     map[string]int
	scheduler Scheduler
	pick      func(n int) int
	log       *zap.Logger
	labels    domain.Labels

	feedbackDelay     time.Duration
	resetConfirmation time.Duration
	successEffect     time.Duration
	errorEffect       time.Duration

	mode         domain.Mode
	target       int // index into elements, -1 when unset
	selected     int // index into elements, -1 when unset
	score        domain.Score
	awaitingNext bool
	closed       bool

	seq          uint64
	nextQuestion task
	effect       task
	resetRevert  task
}

// NewController collects the element registry from the surface and renders
// the initial Info mode. It fails if any tile is malformed.
func NewController(surface Surface, opts ...Option) (*Controller, error) {
	elements, err := domain.CollectElements(surface.Tiles())
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := &Controller{
		surface:           surface,
		elements:          elements,
		byRef:             make(map[string]int, len(elements)),
		scheduler:         realScheduler{},
		pick:              rnd.Intn,
		log:               zap.NewNop(),
		labels:            domain.DefaultLabels(),
		feedbackDelay:     DefaultFeedbackDelay,
		resetConfirmation: DefaultResetConfirmation,
		successEffect:     defaultSuccessEffect,
		errorEffect:       defaultErrorEffect,
		target:            -1,
		selected:          -1,
	}
	for i, e := range elements {
		c.byRef[e.Ref] = i
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.showInfoLocked()
	c.renderScoreLocked()
	c.surface.SetText(domain.SlotReset, c.labels.Reset)
	return c, nil
}

// Elements returns the registry. The slice must not be modified.
func (c *Controller) Elements() []domain.ElementEntry {
	return c.elements
}

// State returns a copy of the current quiz state.
func (c *Controller) State() domain.QuizState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.QuizState{
		Mode:         c.mode,
		Target:       c.entryPtr(c.target),
		Selected:     c.entryPtr(c.selected),
		Score:        c.score,
		AwaitingNext: c.awaitingNext,
	}
}

// Click routes a tile click according to the current mode.
func (c *Controller) Click(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	idx, ok := c.byRef[ref]
	if !ok {
		c.log.Debug("click on unknown tile", zap.String("ref", ref))
		return
	}
	if c.mode == domain.ModeQuiz {
		c.submitAnswerLocked(idx)
		return
	}
	c.selectLocked(idx)
}

// SelectElement shows a tile's attributes in the info panel. Ignored in Quiz mode.
func (c *Controller) SelectElement(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.byRef[ref]
	if c.closed || !ok || c.mode != domain.ModeInfo {
		return
	}
	c.selectLocked(idx)
}

// SubmitAnswer checks a quiz answer. The bool is false when the answer was not
// accepted: outside Quiz mode, for unknown tiles, or during the feedback window.
func (c *Controller) SubmitAnswer(ref string) (domain.AnswerResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.byRef[ref]
	if c.closed || !ok {
		return domain.AnswerResult{}, false
	}
	return c.submitAnswerLocked(idx)
}

// GenerateQuestion picks a new random target and clears the previous feedback.
// Ignored outside Quiz mode.
func (c *Controller) GenerateQuestion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.mode != domain.ModeQuiz {
		return
	}
	c.generateQuestionLocked()
}

// ToggleMode switches between Info and Quiz.
func (c *Controller) ToggleMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.toggleLocked()
}

// StartQuiz enters Quiz mode. Calling it while already in Quiz mode asks a new question.
func (c *Controller) StartQuiz() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startQuizLocked()
}

// ShowInfo enters Info mode and resets the info panel. It is idempotent.
func (c *Controller) ShowInfo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.showInfoLocked()
}

// Reset zeroes the counters, returns to Info mode and briefly confirms on the reset control.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.score = domain.Score{}
	c.showInfoLocked()
	c.renderScoreLocked()

	c.surface.SetText(domain.SlotReset, c.labels.ResetConfirm)
	c.surface.SetStyle(domain.SlotReset, domain.StyleConfirmed)
	c.scheduleLocked(&c.resetRevert, c.resetConfirmation, func() {
		c.surface.SetText(domain.SlotReset, c.labels.Reset)
		c.surface.SetStyle(domain.SlotReset, "")
	})
	c.log.Info("quiz reset")
}

// HandleKey maps global key presses to commands. It reports whether the host
// should suppress the key's default action.
func (c *Controller) HandleKey(key string, mods Modifiers) bool {
	switch {
	case key == "Escape":
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.closed && c.mode == domain.ModeQuiz {
			c.showInfoLocked()
		}
		return false
	case key == "Enter":
		c.ToggleMode()
		return false
	case mods.Ctrl && strings.EqualFold(key, "r"):
		c.Reset()
		return true
	}
	return false
}

// Close cancels every pending timer. Later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelLocked(&c.nextQuestion)
	c.cancelLocked(&c.effect)
	c.cancelLocked(&c.resetRevert)
}

func (c *Controller) toggleLocked() {
	if c.mode == domain.ModeQuiz {
		c.showInfoLocked()
		return
	}
	c.startQuizLocked()
}

func (c *Controller) startQuizLocked() {
	c.mode = domain.ModeQuiz
	c.clearSelectionLocked()

	c.surface.SetText(domain.SlotQuizToggle, c.labels.EndQuiz)
	c.surface.SetStyle(domain.SlotQuizToggle, domain.StyleSecondary)
	c.surface.SetVisible(domain.SlotQuizPanel, true)
	c.surface.SetVisible(domain.SlotInfoPanel, false)

	c.cancelLocked(&c.nextQuestion)
	c.generateQuestionLocked()
	c.log.Debug("quiz mode")
}

func (c *Controller) showInfoLocked() {
	c.mode = domain.ModeInfo
	c.cancelLocked(&c.nextQuestion)
	c.cancelLocked(&c.effect)
	c.surface.SetStyle(domain.SlotContainer, "")
	c.awaitingNext = false
	c.target = -1

	c.clearMarkersLocked()
	c.clearSelectionLocked()

	c.surface.SetText(domain.SlotQuizToggle, c.labels.StartQuiz)
	c.surface.SetStyle(domain.SlotQuizToggle, domain.StylePrimary)
	c.surface.SetVisible(domain.SlotQuizPanel, false)
	c.surface.SetVisible(domain.SlotInfoPanel, true)

	c.surface.SetText(domain.SlotElementName, c.labels.NoSelection)
	c.surface.SetText(domain.SlotElementSymbol, c.labels.Placeholder)
	c.surface.SetText(domain.SlotElementNumber, c.labels.Placeholder)
	c.surface.SetText(domain.SlotElementMass, c.labels.Placeholder)
	c.surface.SetText(domain.SlotElementCategory, c.labels.Placeholder)
}

func (c *Controller) selectLocked(idx int) {
	c.clearSelectionLocked()
	entry := c.elements[idx]
	c.selected = idx
	c.surface.SetMarker(entry.Ref, domain.MarkerSelected, true)

	c.surface.SetText(domain.SlotElementName, entry.Name)
	c.surface.SetText(domain.SlotElementSymbol, entry.Symbol)
	c.surface.SetText(domain.SlotElementNumber, strconv.Itoa(entry.Number))
	c.surface.SetText(domain.SlotElementMass, entry.Mass+" "+c.labels.MassUnit)
	c.surface.SetText(domain.SlotElementCategory, entry.Category)
}

func (c *Controller) generateQuestionLocked() {
	c.target = c.pick(len(c.elements))
	c.awaitingNext = false
	c.surface.SetText(domain.SlotQuizTarget, c.elements[c.target].Symbol)
	c.clearMarkersLocked()
}

func (c *Controller) submitAnswerLocked(idx int) (domain.AnswerResult, bool) {
	if c.mode != domain.ModeQuiz || c.target < 0 || c.awaitingNext {
		return domain.AnswerResult{}, false
	}
	clicked, target := c.elements[idx], c.elements[c.target]
	correct := idx == c.target

	if correct {
		c.score.Correct++
		c.score.Streak++
		c.surface.SetMarker(clicked.Ref, domain.MarkerCorrect, true)
		c.effectLocked(domain.StyleSuccessFlash, c.successEffect)
	} else {
		c.score.Wrong++
		c.score.Streak = 0
		c.surface.SetMarker(clicked.Ref, domain.MarkerIncorrect, true)
		c.surface.SetMarker(target.Ref, domain.MarkerCorrect, true)
		c.effectLocked(domain.StyleErrorShake, c.errorEffect)
	}
	c.renderScoreLocked()

	c.awaitingNext = true
	c.scheduleLocked(&c.nextQuestion, c.feedbackDelay, c.generateQuestionLocked)

	c.log.Debug("answer",
		zap.String("target", target.Symbol),
		zap.String("clicked", clicked.Symbol),
		zap.Bool("correct", correct),
		zap.Int("streak", c.score.Streak),
	)
	return domain.AnswerResult{Correct: correct, Clicked: clicked, Target: target, Score: c.score}, true
}

func (c *Controller) effectLocked(style string, d time.Duration) {
	c.surface.SetStyle(domain.SlotContainer, style)
	c.scheduleLocked(&c.effect, d, func() {
		c.surface.SetStyle(domain.SlotContainer, "")
	})
}

func (c *Controller) renderScoreLocked() {
	c.surface.SetText(domain.SlotCorrectCount, strconv.Itoa(c.score.Correct))
	c.surface.SetText(domain.SlotWrongCount, strconv.Itoa(c.score.Wrong))
	c.surface.SetText(domain.SlotStreakCount, strconv.Itoa(c.score.Streak))
}

func (c *Controller) clearSelectionLocked() {
	if c.selected >= 0 {
		c.surface.SetMarker(c.elements[c.selected].Ref, domain.MarkerSelected, false)
	}
	c.selected = -1
}

// clearMarkersLocked removes every visual marker from every tile.
func (c *Controller) clearMarkersLocked() {
	for _, e := range c.elements {
		c.surface.SetMarker(e.Ref, domain.MarkerCorrect, false)
		c.surface.SetMarker(e.Ref, domain.MarkerIncorrect, false)
		c.surface.SetMarker(e.Ref, domain.MarkerSelected, false)
	}
	c.selected = -1
}

// scheduleLocked replaces whatever is pending in t with fn after d.
func (c *Controller) scheduleLocked(t *task, d time.Duration, fn func()) {
	c.cancelLocked(t)
	c.seq++
	seq := c.seq
	t.seq = seq
	t.timer = c.scheduler.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || t.seq != seq {
			return
		}
		t.timer, t.seq = nil, 0
		fn()
	})
}

func (c *Controller) cancelLocked(t *task) {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer, t.seq = nil, 0
}

func (c *Controller) entryPtr(idx int) *domain.ElementEntry {
	if idx < 0 {
		return nil
	}
	e := c.elements[idx]
	return &e
}
