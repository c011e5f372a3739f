package bot

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type commandReply struct {
	Text string `json:"text"`
}

type reportReply struct {
	OK bool `json:"ok"`
}

// Router returns the HTTP surface: one endpoint per slash command, the
// report trigger, and prometheus metrics.
func (b *Bot) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/meals", b.commandHandler(CommandMeals)).Methods(http.MethodPost)
	r.HandleFunc("/utang", b.commandHandler(CommandUtang)).Methods(http.MethodPost)
	r.HandleFunc("/monito", b.commandHandler(CommandMonito)).Methods(http.MethodPost)
	r.HandleFunc("/report/meals", b.reportHandler).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func (b *Bot) commandHandler(command string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			commandsTotal.WithLabelValues(command, "bad_request").Inc()
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}

		token := r.PostFormValue("token")
		userID := r.PostFormValue("user_id")
		// text must be present, though it may be empty.
		if token == "" || userID == "" || !r.PostForm.Has("text") {
			commandsTotal.WithLabelValues(command, "bad_request").Inc()
			http.Error(w, "token, user_id and text are required", http.StatusBadRequest)
			return
		}

		reply, err := b.Handle(r.Context(), command, token, userID, r.PostFormValue("text"))
		switch {
		case errors.Is(err, ErrBadToken):
			commandsTotal.WithLabelValues(command, "forbidden").Inc()
			w.WriteHeader(http.StatusForbidden)
			return
		case err != nil:
			commandsTotal.WithLabelValues(command, "error").Inc()
			b.log.Errorw("handling command", "command", command, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		commandsTotal.WithLabelValues(command, "ok").Inc()
		b.writeJSON(w, http.StatusOK, commandReply{Text: reply})
	}
}

func (b *Bot) reportHandler(w http.ResponseWriter, r *http.Request) {
	if err := b.Report(r.Context()); err != nil {
		commandsTotal.WithLabelValues(CommandReport, "error").Inc()
		b.log.Errorw("running report", "error", err)
		b.writeJSON(w, http.StatusInternalServerError, reportReply{OK: false})
		return
	}
	commandsTotal.WithLabelValues(CommandReport, "ok").Inc()
	b.writeJSON(w, http.StatusOK, reportReply{OK: true})
}

func (b *Bot) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.log.Warnw("encoding response", "error", err)
	}
}
