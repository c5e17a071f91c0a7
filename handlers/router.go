package handlers

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type RouterConfig struct {
	// Prefix mounts the API, e.g. "/api". The health check stays at "/".
	Prefix      string
	CORSOrigins []string
}

// NewRouter builds the full HTTP surface. activity may be nil when no
// activity store is configured.
func NewRouter(cfg RouterConfig, tasks *TaskHandler, auth *AuthHandler, activity *ActivityHandler, authMw *AuthMiddleware, logger *log.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(MiddlewareTrace, MiddlewareRequestLog(logger), MiddlewareContentTypeSet)

	router.HandleFunc("/", Health).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	if prefix := normalizePrefix(cfg.Prefix); prefix != "" {
		api = router.PathPrefix(prefix).Subrouter()
	}

	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", auth.LogIn).Methods(http.MethodPost)

	privateRouter := api.NewRoute().Subrouter()
	privateRouter.Use(authMw.MiddlewareAuth)

	privateRouter.HandleFunc("/auth/me", auth.Me).Methods(http.MethodGet)

	privateRouter.HandleFunc("/tasks", tasks.GetAll).Methods(http.MethodGet)
	privateRouter.HandleFunc("/tasks", tasks.Create).Methods(http.MethodPost)
	// reorder must be registered ahead of the {id} route or it would be
	// captured as an id.
	privateRouter.HandleFunc("/tasks/reorder", tasks.Reorder).Methods(http.MethodPut)
	privateRouter.HandleFunc("/tasks/{id}", tasks.Update).Methods(http.MethodPut)
	privateRouter.HandleFunc("/tasks/{id}", tasks.Delete).Methods(http.MethodDelete)

	if activity != nil {
		privateRouter.HandleFunc("/activity", activity.GetAll).Methods(http.MethodGet)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(origins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "x-auth-token", RequestIdHeader}),
		gorillaHandlers.ExposedHeaders([]string{RequestIdHeader}),
	)

	recovery := gorillaHandlers.RecoveryHandler(
		gorillaHandlers.RecoveryLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})),
	)

	return recovery(cors(router))
}

// Health answers the liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeResp(messageResp{Message: "Task Management API is running!"}, http.StatusOK, w)
}

func normalizePrefix(prefix string) string {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return ""
	}
	return prefix
}
