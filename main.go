package main

import (
	"html/template"
	"net/http"

	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"minigram/api"
	"minigram/constants"
	docs "minigram/doclib"
	"minigram/routes/posts"
	"minigram/routes/profiles"
	"minigram/routes/search"
	sessionroutes "minigram/routes/sessions"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"

	"github.com/cloudflare/tableflip"

	"github.com/infinitybotlist/eureka/jsonimpl"
	"github.com/infinitybotlist/eureka/zapchi"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	_ "embed"
)

//go:embed data/docs.html
var docsHTML string

var openapi []byte

func setupDocs() {
	docs.DocsSetupData = &docs.SetupData{
		URL:         "http://localhost" + state.Config.Server.Port + "/",
		ErrorStruct: types.ApiError{},
		Info: docs.Info{
			Title:       "Minigram",
			Version:     "1.0",
			Description: "Profiles, posts, photos, follows, comments and likes.",
			License: docs.License{
				Name: "AGPL-3.0",
				URL:  "https://opensource.org/licenses/AGPL-3.0",
			},
		},
	}

	docs.Setup()
}

// newRouter mounts every API router behind the middleware stack. docs and
// api must be set up first.
func newRouter(ratelimit *api.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer,
		middleware.RealIP,
		middleware.CleanPath,
		middleware.Heartbeat("/ping"),
		middleware.Timeout(30*time.Second),
		api.Cors(state.Config.Server.CorsOrigin),
		api.Compression,
		ratelimit.Middleware,
		zapchi.Logger(state.Logger, "api"),
	)

	routers := []uapi.APIRouter{
		profiles.Router{},
		posts.Router{},
		search.Router{},
		sessionroutes.Router{},
	}

	for _, router := range routers {
		name, desc := router.Tag()
		if name != "" {
			docs.AddTag(name, desc)
			uapi.State.SetCurrentTag(name)
		} else {
			panic("Router tag name cannot be empty")
		}

		router.Routes(r)
	}

	var err error

	// Load openapi here to avoid large marshalling in every request
	openapi, err = jsonimpl.Marshal(docs.GetSchema())

	if err != nil {
		panic(err)
	}

	r.Get("/openapi", func(w http.ResponseWriter, r *http.Request) {
		w.Write(openapi)
	})

	docsTempl := template.Must(template.New("docs").Parse(docsHTML))

	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		docsTempl.Execute(w, map[string]string{
			"url": "/openapi",
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(constants.EndpointNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(constants.MethodNotAllowed))
	})

	return r
}

func main() {
	state.Setup()

	setupDocs()
	api.Setup()

	r := newRouter(api.NewRateLimiter(rate.Every(time.Second/5), 20))

	// If GOOS is windows, do normal http server
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		upg, _ := tableflip.New(tableflip.Options{})
		defer upg.Stop()

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGHUP)
			for range sig {
				state.Logger.Info("Received SIGHUP, upgrading server")
				upg.Upgrade()
			}
		}()

		// Listen must be called before Ready
		ln, err := upg.Listen("tcp", state.Config.Server.Port)

		if err != nil {
			state.Logger.Fatal("Error binding to socket", zap.Error(err))
		}

		defer ln.Close()

		server := http.Server{
			ReadTimeout: 30 * time.Second,
			Handler:     r,
		}

		go func() {
			err := server.Serve(ln)
			if err != http.ErrServerClosed {
				state.Logger.Error("Server failed due to unexpected error", zap.Error(err))
			}
		}()

		if err := upg.Ready(); err != nil {
			state.Logger.Fatal("Error calling upg.Ready", zap.Error(err))
		}

		<-upg.Exit()
	} else {
		// Tableflip not supported
		state.Logger.Warn("Tableflip not supported on this platform, this is not a production-capable server.")
		err := http.ListenAndServe(state.Config.Server.Port, r)

		if err != nil {
			state.Logger.Fatal("Error binding to socket", zap.Error(err))
		}
	}
}
