package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hammamikhairi/ottovoice/internal/command"
	"github.com/hammamikhairi/ottovoice/internal/controller"
	"github.com/hammamikhairi/ottovoice/internal/display"
	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

type cliApp struct {
	ctrl     *controller.Controller
	recipes  domain.RecipeSource
	log      *logger.Logger
	ui       *display.UI
	lastList []domain.RecipeSummary // for selection by number
	title    string                 // loaded recipe
}

func (a *cliApp) start(ctx context.Context, recipeID string, listen bool) {
	if recipeID != "" {
		a.load(ctx, recipeID)
	} else {
		a.showRecipes(ctx, "")
	}
	if listen {
		a.listen()
	}
}

func (a *cliApp) run(ctx context.Context) {
	uiCh := a.ui.InputChan()
	for {
		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-uiCh:
			if !ok {
				return
			}
			line = l
		}

		in := command.ParseInput(line)
		a.log.Debug("input: %s %s %q", in.Action, in.Command, in.Arg)

		switch in.Action {
		case command.ActionPlayback:
			a.playback(ctx, in.Command)
		case command.ActionListen:
			a.listen()
		case command.ActionSteps:
			a.showSteps()
		case command.ActionRecipes:
			a.showRecipes(ctx, in.Arg)
		case command.ActionLoad:
			a.selectRecipe(ctx, in.Arg)
		case command.ActionStatus:
			a.status()
		case command.ActionHelp:
			a.showHelp()
		case command.ActionQuit:
			a.ui.PrintChat("Bye.")
			return
		default:
			a.ui.PrintHint(fmt.Sprintf("Not sure what %q means. Type 'help' for commands.", in.Arg))
		}
	}
}

// playback sends a typed playback command straight to the controller.
// Typed commands skip the voice debounce.
func (a *cliApp) playback(ctx context.Context, cmd domain.VoiceCommand) {
	before := a.ctrl.State()
	switch cmd {
	case domain.CommandStopListening:
		if !before.IsListening {
			a.ui.PrintHint("Not listening.")
			return
		}
	case domain.CommandPlay, domain.CommandNext, domain.CommandPrevious:
		if before.StepCount == 0 {
			a.ui.PrintHint("No recipe loaded. Type 'recipes' to pick one.")
			return
		}
	}

	err := a.ctrl.Dispatch(ctx, cmd)

	switch cmd {
	case domain.CommandStopListening:
		a.ui.PrintChat("Stopped listening.")
	case domain.CommandPlay:
		if err == nil {
			a.showCurrentStep()
		}
	case domain.CommandNext, domain.CommandPrevious:
		if a.ctrl.State().CurrentStepIndex == before.CurrentStepIndex {
			if cmd == domain.CommandNext {
				a.ui.PrintHint("Already at the last step.")
			} else {
				a.ui.PrintHint("Already at the first step.")
			}
			return
		}
		a.showCurrentStep()
	}
}

func (a *cliApp) listen() {
	if err := a.ctrl.StartListening(); err != nil {
		// A denied microphone has already been reported.
		if !errors.Is(err, domain.ErrPermissionDenied) {
			a.ui.PrintUrgent(fmt.Sprintf("Could not start listening: %v", err))
		}
		return
	}
	a.ui.PrintChat("Listening. Say \"play\", \"pause\", \"next\", \"go back\", or \"stop listening\".")
}

func (a *cliApp) showRecipes(ctx context.Context, query string) {
	var (
		list []domain.RecipeSummary
		err  error
	)
	if query == "" {
		list, err = a.recipes.List(ctx)
	} else {
		list, err = a.recipes.Search(ctx, query)
	}
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error loading recipes: %v", err))
		return
	}
	if len(list) == 0 {
		a.ui.PrintHint("No recipes found.")
		return
	}

	a.lastList = list
	a.ui.PrintStep("Recipes:")
	for i, r := range list {
		line := fmt.Sprintf("[%d] %s", i+1, r.Title)
		a.ui.PrintInstruction(line)
		if r.Steps > 0 {
			a.ui.PrintHint(fmt.Sprintf("    %s, %d steps", r.ID, r.Steps))
		} else {
			a.ui.PrintHint("    " + r.ID)
		}
	}
	a.ui.PrintChat("Pick one by number, or 'load <id>'.")
}

func (a *cliApp) selectRecipe(ctx context.Context, arg string) {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(a.lastList) {
		arg = a.lastList[n-1].ID
	}
	a.load(ctx, arg)
}

func (a *cliApp) load(ctx context.Context, id string) {
	r, err := a.recipes.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.ui.PrintHint(fmt.Sprintf("No recipe %q. Type 'recipes' to list them.", id))
		return
	case errors.Is(err, domain.ErrMissingCredentials):
		a.ui.ReportError("Recipes", "API key is not configured")
		return
	case err != nil:
		a.ui.PrintUrgent(fmt.Sprintf("Error loading recipe: %v", err))
		return
	}

	a.ctrl.LoadInstructions(r.Instructions)
	a.title = r.Title
	a.ui.PrintStep(fmt.Sprintf("=== %s ===", r.Title))
	a.ui.PrintHint(fmt.Sprintf("%d steps. Say or type \"play\" to hear the first one.", r.Instructions.Len()))
	a.showCurrentStep()
}

func (a *cliApp) showCurrentStep() {
	st := a.ctrl.State()
	step, ok := a.ctrl.CurrentStep()
	if !ok {
		return
	}
	a.ui.PrintStep(fmt.Sprintf("Step %d/%d", st.CurrentStepIndex+1, st.StepCount))
	a.ui.PrintInstruction(step.Text)
}

func (a *cliApp) showSteps() {
	steps := a.ctrl.Steps()
	if len(steps) == 0 {
		a.ui.PrintHint("No recipe loaded.")
		return
	}
	cur := a.ctrl.State().CurrentStepIndex
	a.ui.PrintStep(a.title)
	for i, s := range steps {
		marker := "  "
		if i == cur {
			marker = "▶ "
		}
		a.ui.PrintInstruction(fmt.Sprintf("%s%d. %s", marker, s.Ordinal, truncateStr(s.Text, 90)))
	}
}

func (a *cliApp) status() {
	st := a.ctrl.State()
	if st.StepCount == 0 {
		a.ui.PrintHint("No recipe loaded.")
	} else {
		a.ui.PrintStep(fmt.Sprintf("%s: step %d/%d", a.title, st.CurrentStepIndex+1, st.StepCount))
	}
	a.ui.PrintHint(fmt.Sprintf("listening=%v processing=%v playing=%v", st.IsListening, st.IsProcessing, st.IsPlaying))
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Commands:")
	a.ui.PrintInstruction("  listen           Start hands-free voice control")
	a.ui.PrintInstruction("  stop             Stop listening")
	a.ui.PrintInstruction("  play / repeat    Read the current step aloud")
	a.ui.PrintInstruction("  pause            Stop reading")
	a.ui.PrintInstruction("  next / skip      Move to the next step")
	a.ui.PrintInstruction("  back             Move to the previous step")
	a.ui.PrintInstruction("  steps            Show all steps")
	a.ui.PrintInstruction("  recipes [query]  List or search recipes")
	a.ui.PrintInstruction("  load <id> / 1-9  Load a recipe by ID or list number")
	a.ui.PrintInstruction("  status           Show progress and state")
	a.ui.PrintInstruction("  help             Show this message")
	a.ui.PrintInstruction("  quit / exit      Exit")
	a.ui.Println("")
	a.ui.PrintStep("Voice (while listening):")
	a.ui.PrintInstruction("  \"play\", \"pause\", \"next\" / \"skip\", \"go back\" / \"previous\", \"stop listening\"")
	a.ui.PrintHint("  Voice commands closer than the debounce window are ignored.")
}

// truncateStr shortens s to at most maxLen runes, ending in "...".
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
