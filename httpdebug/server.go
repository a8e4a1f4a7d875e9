// Package httpdebug exposes a World's archetype layout over HTTP as JSON,
// so external tooling (serialization collaborators, dashboards) can poll a
// running world without linking Go code into its process (SPEC_FULL.md
// domain stack item 7; spec.md §6, "Archetype introspection").
package httpdebug

import (
	"encoding/json"
	"net/http"

	"github.com/archetype-io/warehouse"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server is a read-only introspection HTTP server over one World.
type Server struct {
	world  *warehouse.World
	logger *zap.Logger
	router *mux.Router
}

// NewServer builds a Server wired to world, registering its routes on a
// fresh mux.Router. A nil logger installs zap.NewNop().
func NewServer(world *warehouse.World, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{world: world, logger: logger, router: mux.NewRouter()}
	s.router.HandleFunc("/archetypes", s.handleArchetypes).Methods(http.MethodGet)
	s.router.HandleFunc("/archetypes/generation", s.handleGeneration).Methods(http.MethodGet)
	s.router.HandleFunc("/entities/count", s.handleEntityCount).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler by delegating to the internal router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type archetypeJSON struct {
	ID            uint32                  `json:"id"`
	Len           int                     `json:"len"`
	ComponentIDs  []warehouse.ComponentID `json:"component_ids"`
	ComponentTags []string                `json:"component_names"`
}

func (s *Server) handleArchetypes(w http.ResponseWriter, r *http.Request) {
	views := s.world.Archetypes()
	out := make([]archetypeJSON, len(views))
	for i, v := range views {
		ids := v.ComponentIDs()
		names := make([]string, len(ids))
		for j, id := range ids {
			names[j] = id.String()
		}
		out[i] = archetypeJSON{
			ID:            v.ID(),
			Len:           v.Len(),
			ComponentIDs:  ids,
			ComponentTags: names,
		}
	}
	s.writeJSON(w, out)
}

func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]uint64{"generation": s.world.ArchetypesGeneration()})
}

func (s *Server) handleEntityCount(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]int{"count": s.world.Len()})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("httpdebug: encoding response", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
