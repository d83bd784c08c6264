package seats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ticketly/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hold is a short-lived claim on seats of one session
type Hold struct {
	HoldID    string      `json:"holdId"`
	SessionID string      `json:"sessionId"`
	UserID    string      `json:"userId"`
	Seats     []Selection `json:"seats"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// HoldStore keeps seat holds in Redis. Every multi-key change runs as a Lua script.
type HoldStore struct {
	redis   *redis.Client
	ttl     time.Duration
	hold    *redis.Script
	release *redis.Script
	drop    *redis.Script
}

func NewHoldStore(client *redis.Client, ttl time.Duration) *HoldStore {
	return &HoldStore{
		redis:   client,
		ttl:     ttl,
		hold:    redis.NewScript(luaHoldSeats),
		release: redis.NewScript(luaReleaseHold),
		drop:    redis.NewScript(luaDropSeats),
	}
}

// Seat hold values are "user:holdId". Hold ids are UUIDs, so the user is everything
// before the last colon, even when the user id itself contains colons.
const luaHolder = `
local function holder(value)
    return string.match(value, "^(.*):[^:]*$") or value
end
`

// KEYS[1] = hold key, KEYS[2] = hold seat set, KEYS[3..N] = seat hold keys
// ARGV[1] = user id, ARGV[2] = hold id, ARGV[3] = session id, ARGV[4] = ttl seconds
const luaHoldSeats = luaHolder + `
local owner = ARGV[1] .. ":" .. ARGV[2]
local ttl = tonumber(ARGV[4])

for i = 3, #KEYS do
    local current = redis.call("GET", KEYS[i])
    if current and holder(current) ~= ARGV[1] then
        return {0, KEYS[i]}
    end
end

redis.call("HSET", KEYS[1], "user_id", ARGV[1], "session_id", ARGV[3])
redis.call("EXPIRE", KEYS[1], ttl)
for i = 3, #KEYS do
    redis.call("SET", KEYS[i], owner, "EX", ttl)
    redis.call("SADD", KEYS[2], KEYS[i])
end
redis.call("EXPIRE", KEYS[2], ttl)

return {1, #KEYS - 2}
`

// KEYS[1] = hold key, KEYS[2] = hold seat set
// ARGV[1] = user id, ARGV[2] = hold id
const luaReleaseHold = `
local user_id = redis.call("HGET", KEYS[1], "user_id")
if not user_id then
    return {0, "not_found"}
end
if user_id ~= ARGV[1] then
    return {0, "forbidden"}
end

local owner = ARGV[1] .. ":" .. ARGV[2]
local released = 0
for _, seat_key in ipairs(redis.call("SMEMBERS", KEYS[2])) do
    if redis.call("GET", seat_key) == owner then
        redis.call("DEL", seat_key)
        released = released + 1
    end
end
redis.call("DEL", KEYS[1], KEYS[2])

return {1, released}
`

// KEYS = seat hold keys, ARGV[1] = user id
const luaDropSeats = luaHolder + `
local dropped = 0
for i = 1, #KEYS do
    local current = redis.call("GET", KEYS[i])
    if current and holder(current) == ARGV[1] then
        redis.call("DEL", KEYS[i])
        dropped = dropped + 1
    end
end
return dropped
`

func holdKey(holdID string) string {
	return "ticketly:hold:" + holdID
}

func holdSeatsKey(holdID string) string {
	return "ticketly:hold_seats:" + holdID
}

func seatHoldKey(sessionID string, sel Selection) string {
	return "ticketly:seat_hold:" + sessionID + ":" + sel.Key()
}

// holderFromValue extracts the user id from a "user:hold" value
func holderFromValue(value string) string {
	if i := strings.LastIndex(value, ":"); i >= 0 {
		return value[:i]
	}
	return value
}

// HoldSeats claims every selected seat for userID or none of them
func (h *HoldStore) HoldSeats(ctx context.Context, sessionID, userID string, selected []Selection) (*Hold, error) {
	if len(selected) == 0 {
		return nil, apperrors.Configuration("no seats selected")
	}
	if dup, ok := DuplicateSelection(selected); ok {
		return nil, apperrors.Configuration("seat %s in section %s selected twice", dup.SeatID, dup.Section)
	}

	holdID := uuid.NewString()
	keys := make([]string, 0, len(selected)+2)
	keys = append(keys, holdKey(holdID), holdSeatsKey(holdID))
	for _, sel := range selected {
		keys = append(keys, seatHoldKey(sessionID, sel))
	}

	res, err := h.hold.Run(ctx, h.redis, keys, userID, holdID, sessionID, strconv.Itoa(int(h.ttl.Seconds()))).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to hold seats: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected hold script result: %v", res)
	}
	if ok, _ := res[0].(int64); ok == 0 {
		return nil, apperrors.Conflict("seat %v is held by another user", strings.TrimPrefix(fmt.Sprint(res[1]), "ticketly:seat_hold:"+sessionID+":"))
	}

	return &Hold{
		HoldID:    holdID,
		SessionID: sessionID,
		UserID:    userID,
		Seats:     selected,
		ExpiresAt: time.Now().UTC().Add(h.ttl),
	}, nil
}

// ReleaseHold drops a hold owned by userID and returns how many seats it freed
func (h *HoldStore) ReleaseHold(ctx context.Context, holdID, userID string) (int, error) {
	res, err := h.release.Run(ctx, h.redis, []string{holdKey(holdID), holdSeatsKey(holdID)}, userID, holdID).Slice()
	if err != nil {
		return 0, fmt.Errorf("failed to release hold: %w", err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("unexpected release script result: %v", res)
	}
	if ok, _ := res[0].(int64); ok == 0 {
		if res[1] == "forbidden" {
			return 0, apperrors.Forbidden("hold %s belongs to another user", holdID)
		}
		return 0, apperrors.NotFound("hold %s not found", holdID)
	}
	released, _ := res[1].(int64)
	return int(released), nil
}

// Holders returns the user currently holding each selected seat, keyed by Selection.Key
func (h *HoldStore) Holders(ctx context.Context, sessionID string, selected []Selection) (map[string]string, error) {
	if len(selected) == 0 {
		return map[string]string{}, nil
	}
	keys := make([]string, len(selected))
	for i, sel := range selected {
		keys[i] = seatHoldKey(sessionID, sel)
	}

	values, err := h.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read seat holds: %w", err)
	}

	holders := make(map[string]string)
	for i, v := range values {
		if s, ok := v.(string); ok {
			holders[selected[i].Key()] = holderFromValue(s)
		}
	}
	return holders, nil
}

// SessionHolders scans every live hold of a session
func (h *HoldStore) SessionHolders(ctx context.Context, sessionID string) (map[string]string, error) {
	prefix := "ticketly:seat_hold:" + sessionID + ":"
	holders := make(map[string]string)

	iter := h.redis.Scan(ctx, 0, prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		value, err := h.redis.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read seat hold: %w", err)
		}
		holders[strings.TrimPrefix(key, prefix)] = holderFromValue(value)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan seat holds: %w", err)
	}
	return holders, nil
}

// DropSeats removes userID's holds on the given seats, leaving other users' holds intact
func (h *HoldStore) DropSeats(ctx context.Context, sessionID, userID string, selected []Selection) error {
	if len(selected) == 0 {
		return nil
	}
	keys := make([]string, len(selected))
	for i, sel := range selected {
		keys[i] = seatHoldKey(sessionID, sel)
	}
	if err := h.drop.Run(ctx, h.redis, keys, userID).Err(); err != nil {
		return fmt.Errorf("failed to drop seat holds: %w", err)
	}
	return nil
}

// PreloadScripts loads the Lua scripts so later calls hit EVALSHA
func (h *HoldStore) PreloadScripts(ctx context.Context) error {
	for _, s := range []*redis.Script{h.hold, h.release, h.drop} {
		if err := s.Load(ctx, h.redis).Err(); err != nil {
			return fmt.Errorf("failed to load seat hold script: %w", err)
		}
	}
	return nil
}
