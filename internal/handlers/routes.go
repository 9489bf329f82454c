package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes вешает обработчики 404/405 до Route, чтобы их унаследовали подроутеры.
func RegisterRoutes(r chi.Router, th *TaskHandler, rh *ReportHandler) {
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/health", th.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", th.CreateTask) // POST /api/tasks
			r.Get("/", th.GetTasks)    // GET /api/tasks

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", th.GetTaskByID)              // GET /api/tasks/{id}
				r.Put("/", th.UpdateTask)               // PUT /api/tasks/{id}
				r.Delete("/", th.DeleteTask)            // DELETE /api/tasks/{id}
				r.Patch("/status", th.UpdateTaskStatus) // PATCH /api/tasks/{id}/status
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", rh.GetSummary)
			r.Get("/status-count", rh.GetStatusCount)
			r.Get("/overdue", rh.GetOverdueTasks)
		})
	})
}
