package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// Gateway bridges REST calls under /v1 to the gRPC services.
type Gateway struct {
	mux  *runtime.ServeMux
	conn *grpc.ClientConn
}

func NewGateway(grpcAddress string) (*Gateway, error) {
	conn, err := grpc.NewClient(dialTarget(grpcAddress), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC %s: %w", grpcAddress, err)
	}

	mux := runtime.NewServeMux()
	client := healthpb.NewHealthClient(conn)
	if err := mux.HandlePath(http.MethodGet, "/v1/health", healthHandler(client)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("register health gateway: %w", err)
	}
	return &Gateway{mux: mux, conn: conn}, nil
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mux.ServeHTTP(w, r)
}

func (g *Gateway) Close() error {
	return g.conn.Close()
}

func healthHandler(client healthpb.HealthClient) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		resp, err := client.Check(r.Context(), &healthpb.HealthCheckRequest{Service: r.URL.Query().Get("service")})
		if err != nil {
			resp = &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_UNKNOWN}
		}

		status := http.StatusOK
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			status = http.StatusServiceUnavailable
		}
		body, err := protojson.Marshal(resp)
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}
}
