package session

import (
	"encoding/base64"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/keerthana777z/health-risk-demo/internal/models"
	"github.com/keerthana777z/health-risk-demo/internal/util"
)

// Recorder subscribes to session changes and writes them to the audit
// trail. It is the broadcaster's standing consumer; handlers publish,
// the recorder persists.
type Recorder struct {
	DB         *gorm.DB
	EncryptKey string
	Log        *logrus.Logger
}

func NewRecorder(db *gorm.DB, encryptKey string, log *logrus.Logger) *Recorder {
	return &Recorder{DB: db, EncryptKey: encryptKey, Log: log}
}

// Run attaches the recorder to the broadcaster and returns a stop
// function. Stopping unsubscribes and ends the consuming goroutine;
// it is safe to call more than once.
func (r *Recorder) Run(bus *Broadcaster) (stop func()) {
	events, unsubscribe := bus.Subscribe()

	go func() {
		for ev := range events {
			r.record(ev)
		}
	}()

	return unsubscribe
}

func (r *Recorder) record(ev Event) {
	action := string(ev.Type) + " " + ev.Email

	enc := action
	if r.EncryptKey != "" {
		b, err := util.EncryptAES(r.EncryptKey, []byte(action))
		if err != nil {
			r.Log.WithError(err).Warn("encrypt session audit entry")
			return
		}
		enc = base64.StdEncoding.EncodeToString(b)
	}

	userID := ev.UserID
	entry := models.AuditLog{
		UserID:    &userID,
		Method:    "SESSION",
		ActionEnc: enc,
	}
	if err := r.DB.Create(&entry).Error; err != nil {
		r.Log.WithError(err).Warn("persist session audit entry")
	}
}
