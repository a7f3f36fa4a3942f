package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	apperrors "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/errors"
	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/service"
	"go.uber.org/zap"
)

// TokenSource supplies the current access token. An empty string means
// the request goes out unauthenticated.
type TokenSource func() string

// API is the typed REST client for the campaign server. All methods
// decode straight into the server's response types.
type API struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     *zap.Logger

	onUnauthorized func()
}

// NewAPI builds a REST client from the client configuration.
func NewAPI(cfg *config.ClientConfig, token TokenSource, log *zap.Logger) *API {
	return &API{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		token:   token,
		log:     log,
	}
}

// OnUnauthorized registers the forced re-authentication hook. It runs
// whenever the server answers 401, typically to drop the stored token
// and send the player back to the login screen.
func (a *API) OnUnauthorized(fn func()) {
	a.onUnauthorized = fn
}

// serverError mirrors the server's error envelope.
type serverError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrInvalidParam, "encode request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidParam, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != nil {
		if tok := a.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrTimeout, "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrTimeout, "read response")
	}

	if resp.StatusCode == http.StatusUnauthorized && a.onUnauthorized != nil {
		a.onUnauthorized()
	}

	if resp.StatusCode >= 400 {
		var srvErr serverError
		if json.Unmarshal(data, &srvErr) == nil && srvErr.Message != "" {
			a.log.Debug("server rejected request",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("code", srvErr.Code))
			return apperrors.Newf(apperrors.ErrInvalidParam, "%s: %s", srvErr.Code, srvErr.Message)
		}
		return apperrors.Newf(apperrors.ErrInvalidParam, "server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidParam, "decode response")
	}
	return nil
}

// Register creates an account and returns the issued token pair.
func (a *API) Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResponse, error) {
	var resp service.AuthResponse
	if err := a.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and returns the issued token pair.
func (a *API) Login(ctx context.Context, req service.LoginRequest) (*service.AuthResponse, error) {
	var resp service.AuthResponse
	if err := a.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the current session.
func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// NewGame starts a fresh campaign.
func (a *API) NewGame(ctx context.Context, difficulty string) (*service.GameSnapshot, error) {
	body := map[string]string{"difficulty": difficulty}
	var snap service.GameSnapshot
	if err := a.do(ctx, http.MethodPost, "/game/new", body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetGame fetches the full campaign snapshot.
func (a *API) GetGame(ctx context.Context, gameID uint) (*service.GameSnapshot, error) {
	var snap service.GameSnapshot
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/game/%d", gameID), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetInventory fetches the campaign inventory.
func (a *API) GetInventory(ctx context.Context, gameID uint) (*service.Inventory, error) {
	var inv service.Inventory
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/game/%d/inventory", gameID), nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// SaveGame persists the campaign state server side.
func (a *API) SaveGame(ctx context.Context, gameID uint) error {
	return a.do(ctx, http.MethodPost, fmt.Sprintf("/game/%d/save", gameID), nil, nil)
}

// UseInsight spends an insight token on a question.
func (a *API) UseInsight(ctx context.Context, gameID uint, question string) (*service.InsightResult, error) {
	body := map[string]string{"question": question}
	var res service.InsightResult
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/game/%d/insight", gameID), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Challenge opens an encounter with the named oracle.
func (a *API) Challenge(ctx context.Context, gameID uint, oracleName string) (*service.ChallengeResult, error) {
	body := map[string]string{"oracle_name": oracleName}
	var res service.ChallengeResult
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/game/%d/oracle/challenge", gameID), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetPuzzle fetches the oracle's riddle.
func (a *API) GetPuzzle(ctx context.Context, gameID, oracleID uint) (*service.Puzzle, error) {
	var puzzle service.Puzzle
	path := fmt.Sprintf("/game/%d/oracle/%d/puzzle", gameID, oracleID)
	if err := a.do(ctx, http.MethodGet, path, nil, &puzzle); err != nil {
		return nil, err
	}
	return &puzzle, nil
}

// SolvePuzzle submits a solution attempt.
func (a *API) SolvePuzzle(ctx context.Context, gameID uint, req service.PuzzleSolutionRequest) (*service.PuzzleResult, error) {
	var res service.PuzzleResult
	path := fmt.Sprintf("/game/%d/oracle/puzzle/solve", gameID)
	if err := a.do(ctx, http.MethodPost, path, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// StartBattle opens the battle against the oracle's army.
func (a *API) StartBattle(ctx context.Context, gameID, oracleID uint) (*service.BattleStart, error) {
	var res service.BattleStart
	path := fmt.Sprintf("/game/%d/oracle/%d/battle", gameID, oracleID)
	if err := a.do(ctx, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BattleAction executes one battle turn.
func (a *API) BattleAction(ctx context.Context, gameID, oracleID uint, action string) (*service.BattleTurn, error) {
	body := map[string]string{"action": action}
	var res service.BattleTurn
	path := fmt.Sprintf("/game/%d/oracle/%d/battle/action", gameID, oracleID)
	if err := a.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ConfirmDefeat collects rewards after a victorious battle.
func (a *API) ConfirmDefeat(ctx context.Context, gameID, oracleID uint) (*service.DefeatResult, error) {
	var res service.DefeatResult
	path := fmt.Sprintf("/game/%d/oracle/%d/defeat", gameID, oracleID)
	if err := a.do(ctx, http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
