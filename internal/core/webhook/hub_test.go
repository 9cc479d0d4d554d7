package webhook

import "testing"

func TestHub_PublishInOrderAndUnsubscribe(t *testing.T) {
	hub := NewHub()
	var got []string

	unsubA := hub.Subscribe(func(Event) { got = append(got, "a") })
	hub.Subscribe(func(Event) { got = append(got, "b") })

	hub.Publish(Event{Kind: KindMessage})
	unsubA()
	hub.Publish(Event{Kind: KindMessage})

	want := []string{"a", "b", "b"}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	if hub.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", hub.SubscriberCount())
	}
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNATSRelay_Subjects(t *testing.T) {
	pub := &fakePublisher{}
	relay := NewNATSRelay(pub, "")

	relay.Relay(Event{Kind: KindMessage, Message: &MessageData{}})
	relay.Relay(Event{Kind: KindStatus, Status: &StatusUpdateData{Type: "status"}})

	if len(pub.subjects) != 2 || pub.subjects[0] != "console.webhook.message" || pub.subjects[1] != "console.webhook.status" {
		t.Fatalf("subjects = %v", pub.subjects)
	}
	if len(pub.payloads[1]) == 0 {
		t.Fatalf("empty payload")
	}
}
