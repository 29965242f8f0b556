package domain

// Slot names a display node on the presentation surface. Values match the
// element ids of the presentation document.
type Slot string

const (
	SlotElementName     Slot = "element-name"
	SlotElementSymbol   Slot = "element-symbol"
	SlotElementNumber   Slot = "element-number"
	SlotElementMass     Slot = "element-mass"
	SlotElementCategory Slot = "element-category"
	SlotQuizTarget      Slot = "quiz-target"
	SlotCorrectCount    Slot = "correct-count"
	SlotWrongCount      Slot = "wrong-count"
	SlotStreakCount     Slot = "streak-count"
	SlotQuizToggle      Slot = "quiz-btn"
	SlotInfoPanel       Slot = "info-panel"
	SlotQuizPanel       Slot = "quiz-panel"
	SlotReset           Slot = "reset-btn"
	SlotContainer       Slot = "container"
)

// AllSlots lists every slot the controller may write to.
func AllSlots() []Slot {
	return []Slot{
		SlotElementName, SlotElementSymbol, SlotElementNumber, SlotElementMass, SlotElementCategory,
		SlotQuizTarget, SlotCorrectCount, SlotWrongCount, SlotStreakCount,
		SlotQuizToggle, SlotInfoPanel, SlotQuizPanel, SlotReset, SlotContainer,
	}
}

// Marker is a visual state applied to a tile. Several markers may be active at once.
type Marker string

const (
	MarkerSelected  Marker = "selected"
	MarkerCorrect   Marker = "correct"
	MarkerIncorrect Marker = "incorrect"
)

// Style classes written to styled slots.
const (
	StylePrimary      = "primary"
	StyleSecondary    = "secondary"
	StyleConfirmed    = "confirmed"
	StyleSuccessFlash = "success-flash"
	StyleErrorShake   = "error-shake"
)
