package bot

import (
	"context"
	"time"

	"github.com/AzielCF/az-plant/domains/messenger"
	"github.com/AzielCF/az-plant/domains/plant"
)

type Command string

const (
	CommandStart    Command = "start"
	CommandStatus   Command = "status"
	CommandWater    Command = "water"
	CommandToggleUV Command = "toggle_uv"
	CommandReport   Command = "report"
	CommandChart    Command = "chart"
	CommandFrames   Command = "frames"
	CommandDetect   Command = "detect"
)

// Report artifacts produced by the external detection job, by file name.
const (
	FileDiseaseReport   = "disease_report.pdf"
	FilePredictionsCSV  = "disease_predictions.csv"
	FileConfidenceChart = "confidence_chart.png"
	FileDetectionChart  = "detection_chart.png"
	FileFullFrames      = "full_frames_report.pdf"
)

// KeyboardButton ties a reply keyboard label to the command it sends.
type KeyboardButton struct {
	Label   string
	Command Command
}

// MainKeyboard is the reply keyboard layout, row by row.
var MainKeyboard = [][]KeyboardButton{
	{{"🌿 Status", CommandStatus}, {"💧 Water Now", CommandWater}},
	{{"☀️ Toggle UV", CommandToggleUV}, {"📄 Send Report", CommandReport}},
	{{"📊 Send Chart", CommandChart}, {"📸 Send Full Frames", CommandFrames}},
	{{"🖥️ Trigger PC Detection", CommandDetect}},
}

// CommandContext carries everything a handler touches. Handlers hold no globals.
type CommandContext struct {
	ChatID    int64
	State     plant.IStateStore
	Messenger messenger.IMessenger
}

type IBotUsecase interface {
	// Handle runs one command for the chat. Errors are only returned for
	// state store failures; delivery failures are logged.
	Handle(ctx context.Context, cc CommandContext, cmd Command) error
	// Resolve maps a slash command or a keyboard label to a command.
	Resolve(text string) (Command, bool)
	// SetTimings changes the simulated water and detect durations.
	SetTimings(water, detect time.Duration)
	Timings() (water, detect time.Duration)
}
