package main

// Action names, as used in the keybindings config section.
const (
	ActionExit        = "exit"
	ActionPrevious    = "previous"
	ActionNext        = "next"
	ActionPrevious10  = "previous_10"
	ActionNext10      = "next_10"
	ActionPrevious100 = "previous_100"
	ActionNext100     = "next_100"
	ActionKeep        = "keep"
)

// ActionDefinition defines an action with its default keybindings and description
type ActionDefinition struct {
	Name        string
	Keys        []string
	Description string
}

// actionDefinitions contains all action definitions with default keybindings and descriptions
var actionDefinitions = []ActionDefinition{
	{ActionExit, []string{"Escape", "KeyQ"}, "Quit application"},
	{ActionPrevious, []string{"ArrowLeft"}, "Previous image"},
	{ActionNext, []string{"ArrowRight"}, "Next image"},
	{ActionPrevious10, []string{"KeyP"}, "Back 10 images"},
	{ActionNext10, []string{"KeyN"}, "Forward 10 images"},
	{ActionPrevious100, []string{"KeyL"}, "Back 100 images"},
	{ActionNext100, []string{"Semicolon"}, "Forward 100 images"},
	{ActionKeep, []string{"KeyK"}, "Move image into the keep directory"},
}

// InputActions is what an action can do to the viewer.
type InputActions interface {
	Exit()
	Step(dir Direction, magnitude int)
	KeepCurrent() error
}

// ActionExecutor maps action names onto InputActions calls.
type ActionExecutor struct{}

func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction runs action and reports whether it was recognized.
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions) (bool, error) {
	switch action {
	case ActionExit:
		inputActions.Exit()
	case ActionPrevious:
		inputActions.Step(Backward, 1)
	case ActionNext:
		inputActions.Step(Forward, 1)
	case ActionPrevious10:
		inputActions.Step(Backward, 10)
	case ActionNext10:
		inputActions.Step(Forward, 10)
	case ActionPrevious100:
		inputActions.Step(Backward, 100)
	case ActionNext100:
		inputActions.Step(Forward, 100)
	case ActionKeep:
		if err := inputActions.KeepCurrent(); err != nil {
			return true, err
		}
	default:
		return false, nil
	}

	return true, nil
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = append([]string(nil), action.Keys...)
	}
	return keybindings
}
