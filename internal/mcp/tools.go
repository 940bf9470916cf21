package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	return timeRange(startStr, endStr, 7)
}

// timeRange parses start/end, defaulting end to now and start to lookbackDays
// before end.
func timeRange(startStr, endStr string, lookbackDays int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -lookbackDays)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List logged workout sessions with exercise and set counts, newest first."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get one workout session with all exercises and sets (reps, weight, warmup flag)."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetSessionRecords = mcp.NewTool("get_session_records",
	mcp.WithDescription("Personal records set in a session: best single rep, best weight per rep count, and best 5x5 total, compared against all earlier sessions."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetStrengthLevels = mcp.NewTool("get_strength_levels",
	mcp.WithDescription("Strength levels (Beginner to World Class) per exercise, muscle group, Push/Pull/Lower group and overall, including a balanced level and the weakest group. Returns null levels when the profile lacks gender or body weight."),
)

var toolGetBestLifts = mcp.NewTool("get_best_lifts",
	mcp.WithDescription("Estimated one-rep max per exercise with the dated lifts it was derived from."),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Query working sets (weight and reps) of exercises over time."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("The user's gender and body weight used for strength scoring."),
)

// --- Tool handlers ---

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.ListSessions(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sessions)
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := sessionIDParam(req)
	if errResult != nil {
		return errResult, nil
	}

	session, err := h.ds.GetSession(ctx, UserIDFromContext(ctx), id)
	if err != nil {
		return h.queryError("get_session", err), nil
	}
	return jsonResult(session)
}

func (h *handlers) getSessionRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := sessionIDParam(req)
	if errResult != nil {
		return errResult, nil
	}

	result, err := h.ds.SessionRecords(ctx, UserIDFromContext(ctx), id)
	if err != nil {
		return h.queryError("get_session_records", err), nil
	}
	return jsonResult(result)
}

func (h *handlers) getStrengthLevels(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	levels, err := h.ds.StrengthLevels(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_strength_levels", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if levels == nil {
		return mcp.NewToolResultText(`{"levels":null,"message":"set gender and body weight in the profile to compute strength levels"}`), nil
	}
	return jsonResult(map[string]any{"levels": levels})
}

func (h *handlers) getBestLifts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lifts, err := h.ds.BestLifts(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_best_lifts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(lifts)
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRange(req.GetString("start", ""), req.GetString("end", ""), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sets, err := h.ds.ExerciseHistory(ctx, UserIDFromContext(ctx), req.GetString("exercise", ""), start, end)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sets)
}

func (h *handlers) getProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, err := h.ds.Profile(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(profile)
}

func sessionIDParam(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("session_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("session_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid session_id: " + err.Error())
	}
	return id, nil
}

func (h *handlers) queryError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("session not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
