package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid 偽造、被竄改或格式錯誤的 token
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired 簽名正確但已過期的 token；和 ErrTokenInvalid 分開，
	// 對掃描端都顯示 invalid，但稽核上是兩種不同的事件
	ErrTokenExpired = errors.New("token expired")
)

// Claims QR token 內嵌的票券身分與發票 metadata
type Claims struct {
	TicketID     uuid.UUID `json:"ticket_id"`
	EventID      uuid.UUID `json:"event_id"`
	TicketTypeID uuid.UUID `json:"ticket_type_id"`
	jwt.RegisteredClaims
}

// Codec 簽發/驗證票券 bearer token。
// secret 由 config 注入，不讀環境變數；Encode/Decode 都是純函數、無 I/O。
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Encode 把票券身分簽成不透明的 bearer token，到期時間 = issuedAt + ttl
func (c *Codec) Encode(ticketID, eventID, ticketTypeID uuid.UUID, issuedAt time.Time) (string, error) {
	claims := Claims{
		TicketID:     ticketID,
		EventID:      eventID,
		TicketTypeID: ticketTypeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ticketID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(c.secret)
}

// Decode 驗證簽名並取回票券身分。
// 回傳 ErrTokenExpired（只是過期）或 ErrTokenInvalid（其餘所有失敗）。
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !tkn.Valid || claims.TicketID == uuid.Nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
