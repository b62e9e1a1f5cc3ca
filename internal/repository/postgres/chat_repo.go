package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/pkg/database"
)

type chatRoomRepo struct {
	db *pgxpool.Pool
}

func NewChatRoomRepository(db *pgxpool.Pool) domain.ChatRoomRepository {
	return &chatRoomRepo{db: db}
}

func scanRoom(row pgx.Row) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	if err := row.Scan(&room.ID, &room.UserLow, &room.UserHigh, &room.MatchID, &room.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// InsertIfAbsent returns created=false without error when the pair already has a room.
func (r *chatRoomRepo) InsertIfAbsent(ctx context.Context, low, high string, matchID *int64) (*domain.ChatRoom, bool, error) {
	room, err := scanRoom(database.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO chat_rooms (user_low, user_high, match_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_low, user_high) DO NOTHING
		RETURNING id, user_low, user_high, match_id, created_at`,
		low, high, matchID,
	))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return room, true, nil
}

func (r *chatRoomRepo) GetByPair(ctx context.Context, low, high string) (*domain.ChatRoom, error) {
	return scanRoom(database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, user_low, user_high, match_id, created_at FROM chat_rooms WHERE user_low = $1 AND user_high = $2`,
		low, high,
	))
}

func (r *chatRoomRepo) GetByID(ctx context.Context, id int64) (*domain.ChatRoom, error) {
	return scanRoom(database.Conn(ctx, r.db).QueryRow(ctx,
		`SELECT id, user_low, user_high, match_id, created_at FROM chat_rooms WHERE id = $1`,
		id,
	))
}

func (r *chatRoomRepo) AttachMatch(ctx context.Context, roomID, matchID int64) error {
	_, err := database.Conn(ctx, r.db).Exec(ctx,
		`UPDATE chat_rooms SET match_id = $2 WHERE id = $1 AND match_id IS NULL`,
		roomID, matchID,
	)
	return err
}

// ListForUser loads every room of the user with its last message, the user's unread count
// and the counterpart's display card in a single round trip.
func (r *chatRoomRepo) ListForUser(ctx context.Context, userID string) ([]domain.RoomListing, error) {
	query := `
		SELECT
			cr.id, cr.user_low, cr.user_high, cr.match_id, cr.created_at,
			lm.id, lm.sender_id, lm.content, lm.status, lm.created_at,
			COALESCE(uc.unread, 0),
			ou.id::text, ou.role,
			CASE WHEN ou.role = 'company' THEN COALESCE(NULLIF(cp.company_name, ''), ou.name) ELSE ou.name END,
			CASE ou.role WHEN 'company' THEN COALESCE(cp.industry, '') WHEN 'seeker' THEN COALESCE(sp.title, '') ELSE '' END
		FROM chat_rooms cr
		JOIN users ou ON ou.id = CASE WHEN cr.user_low = $1 THEN cr.user_high ELSE cr.user_low END
		LEFT JOIN seeker_profiles sp ON sp.user_id = ou.id
		LEFT JOIN company_profiles cp ON cp.user_id = ou.id
		LEFT JOIN LATERAL (
			SELECT m.id, m.sender_id::text AS sender_id, m.content, m.status, m.created_at
			FROM messages m
			WHERE m.chat_room_id = cr.id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread
			FROM messages m
			WHERE m.chat_room_id = cr.id AND m.sender_id <> $1 AND m.status <> 'READ'
		) uc ON TRUE
		WHERE cr.user_low = $1 OR cr.user_high = $1
		ORDER BY cr.created_at DESC, cr.id DESC`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.RoomListing
	for rows.Next() {
		var (
			l         domain.RoomListing
			msgID     *int64
			sender    *string
			content   *string
			status    *string
			createdAt *time.Time
			other     domain.Participant
		)
		if err := rows.Scan(
			&l.Room.ID, &l.Room.UserLow, &l.Room.UserHigh, &l.Room.MatchID, &l.Room.CreatedAt,
			&msgID, &sender, &content, &status, &createdAt,
			&l.UnreadCount,
			&other.UserID, &other.Role, &other.Name, &other.Headline,
		); err != nil {
			return nil, err
		}
		if msgID != nil {
			l.LastMessage = &domain.Message{
				ID:         *msgID,
				ChatRoomID: l.Room.ID,
				SenderID:   *sender,
				Content:    *content,
				Status:     domain.MessageStatus(*status),
				CreatedAt:  *createdAt,
			}
		}
		l.OtherUser = &other
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

type messageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) domain.MessageRepository {
	return &messageRepo{db: db}
}

// Create stores a SENT message; created_at comes from the database clock.
func (r *messageRepo) Create(ctx context.Context, msg *domain.Message) error {
	if msg.Status == "" {
		msg.Status = domain.MessageSent
	}
	return database.Conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO messages (chat_room_id, sender_id, content, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		msg.ChatRoomID, msg.SenderID, msg.Content, msg.Status,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepo) ListByRoom(ctx context.Context, roomID int64) ([]domain.Message, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, `
		SELECT id, chat_room_id, sender_id, content, status, created_at
		FROM messages
		WHERE chat_room_id = $1
		ORDER BY created_at ASC, id ASC`,
		roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatRoomID, &m.SenderID, &m.Content, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead is a single bulk update. Messages the reader sent are never touched.
func (r *messageRepo) MarkRead(ctx context.Context, roomID int64, userID string) (int64, error) {
	tag, err := database.Conn(ctx, r.db).Exec(ctx, `
		UPDATE messages SET status = 'READ'
		WHERE chat_room_id = $1 AND sender_id <> $2 AND status <> 'READ'`,
		roomID, userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *messageRepo) CountUnread(ctx context.Context, roomID int64, userID string) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE chat_room_id = $1 AND sender_id <> $2 AND status <> 'READ'`,
		roomID, userID,
	).Scan(&n)
	return n, err
}

func (r *messageRepo) CountUnreadTotal(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN chat_rooms cr ON cr.id = m.chat_room_id
		WHERE (cr.user_low = $1 OR cr.user_high = $1)
		  AND m.sender_id <> $1 AND m.status <> 'READ'`,
		userID,
	).Scan(&n)
	return n, err
}

// connectionRepo reads the connections table owned by the networking feature.
type connectionRepo struct {
	db *pgxpool.Pool
}

func NewConnectionGraph(db *pgxpool.Pool) domain.ConnectionGraph {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) IsConnected(ctx context.Context, a, b string) (bool, error) {
	low, high := domain.NormalizePair(a, b)
	var connected bool
	err := database.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE user_low = $1 AND user_high = $2 AND status = 'ACCEPTED'
		)`,
		low, high,
	).Scan(&connected)
	return connected, err
}
