package routing

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"

	"taskhub/internal/config"
	"taskhub/pkg/account"
	"taskhub/pkg/handlers"
	"taskhub/pkg/mailer"
	"taskhub/pkg/middleware"
	"taskhub/pkg/task"
	"taskhub/pkg/token"
)

const hexID = "[0-9a-fA-F]{24}"

func InitRoutes(api *mux.Router, db *mongo.Database, codec *token.Codec, notifier mailer.Notifier, cfg *config.Config, logger *slog.Logger) {

	taskRepo := task.NewMongoRepo(db)

	accountService := account.NewService(account.NewMongoRepo(db), codec, taskRepo, notifier, logger)
	accountHandler := handlers.NewAccountHandler(accountService, logger)

	taskService := task.NewService(taskRepo)
	taskHandler := handlers.NewTaskHandler(taskService, logger)

	limiter := middleware.NewIPLimiter(cfg.LoginRatePerMin, cfg.LoginBurst)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	/* credential routes, rate limited per client IP */
	api.HandleFunc("/accounts", limiter.Wrap(accountHandler.Register)).Methods("POST")
	api.HandleFunc("/accounts/login", limiter.Wrap(accountHandler.Login)).Methods("POST")

	/* session routes */
	api.HandleFunc("/accounts/logout", accountHandler.Logout).Methods("POST")
	api.HandleFunc("/accounts/logoutAll", accountHandler.LogoutAll).Methods("POST")

	/* profile routes */
	api.HandleFunc("/accounts/me", accountHandler.Me).Methods("GET")
	api.HandleFunc("/accounts/me", accountHandler.UpdateMe).Methods("PATCH")
	api.HandleFunc("/accounts/me", accountHandler.DeleteMe).Methods("DELETE")

	/* avatar routes */
	api.HandleFunc("/accounts/me/avatar", accountHandler.UploadAvatar).Methods("POST")
	api.HandleFunc("/accounts/me/avatar", accountHandler.DeleteAvatar).Methods("DELETE")
	api.HandleFunc("/accounts/{id:"+hexID+"}/avatar", accountHandler.GetAvatar).Methods("GET")

	/* task routes */
	api.HandleFunc("/tasks", taskHandler.Create).Methods("POST")
	api.HandleFunc("/tasks", taskHandler.List).Methods("GET")
	api.HandleFunc("/tasks/{id:"+hexID+"}", taskHandler.Get).Methods("GET")
	api.HandleFunc("/tasks/{id:"+hexID+"}", taskHandler.Update).Methods("PATCH")
	api.HandleFunc("/tasks/{id:"+hexID+"}", taskHandler.Delete).Methods("DELETE")
}

func StartServer(addr string, r *mux.Router) {
	fmt.Printf("\n\033[32m The server is running on http://localhost%s \033[0m\n", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
