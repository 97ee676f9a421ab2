package v1

import (
	"testing"
	"time"
)

func TestEnvelopeValidate(t *testing.T) {
	cases := []struct {
		env     Envelope
		wantErr bool
	}{
		{Envelope{V: Version, Type: TypeNotification}, false},
		{Envelope{V: Version, Type: TypeHelloAck}, false},
		{Envelope{V: "", Type: TypeNotification}, true},
		{Envelope{V: "v2", Type: TypeNotification}, true},
		{Envelope{V: Version, Type: ""}, true},
		{Envelope{V: Version, Type: "message_send"}, true},
	}
	for _, tc := range cases {
		err := tc.env.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("Validate(%+v) err=%v wantErr=%v", tc.env, err, tc.wantErr)
		}
	}
}

func TestNew_SetsVersionAndPayload(t *testing.T) {
	env, err := New(TypeNotification, "n1", time.Unix(0, 0), NotificationPayload{ID: "n1", Kind: KindJobStatus, Title: "Job closed"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if env.V != Version || env.Type != TypeNotification || len(env.Payload) == 0 {
		t.Fatalf("env=%+v", env)
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
