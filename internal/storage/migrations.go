package storage

// migrations holds idempotent schema statements per driver. Tasks own their
// updates and reviews (cascade); users are referenced without cascade.
var migrations = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            full_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('Employee', 'Manager')),
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'InProgress', 'Done')),
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            due_date DATETIME,
            created_by INTEGER NOT NULL,
            assigned_to INTEGER NOT NULL,
            FOREIGN KEY(created_by) REFERENCES users(id),
            FOREIGN KEY(assigned_to) REFERENCES users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS task_updates (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_id INTEGER NOT NULL,
            updated_by INTEGER NOT NULL,
            update_text TEXT NOT NULL,
            attachment_url TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE,
            FOREIGN KEY(updated_by) REFERENCES users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS task_reviews (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_id INTEGER NOT NULL,
            reviewed_by INTEGER NOT NULL,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comments TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE,
            FOREIGN KEY(reviewed_by) REFERENCES users(id)
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users(lower(email));`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to);`,
		`CREATE INDEX IF NOT EXISTS idx_task_updates_task ON task_updates(task_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_task_reviews_task ON task_reviews(task_id, created_at);`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            full_name VARCHAR(100) NOT NULL,
            email VARCHAR(100) NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role VARCHAR(20) NOT NULL CHECK (role IN ('Employee', 'Manager')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id BIGSERIAL PRIMARY KEY,
            title VARCHAR(200) NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status VARCHAR(20) NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'InProgress', 'Done')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            due_date TIMESTAMPTZ,
            created_by BIGINT NOT NULL REFERENCES users(id),
            assigned_to BIGINT NOT NULL REFERENCES users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS task_updates (
            id BIGSERIAL PRIMARY KEY,
            task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
            updated_by BIGINT NOT NULL REFERENCES users(id),
            update_text TEXT NOT NULL,
            attachment_url VARCHAR(500),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS task_reviews (
            id BIGSERIAL PRIMARY KEY,
            task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
            reviewed_by BIGINT NOT NULL REFERENCES users(id),
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comments TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users(lower(email));`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to);`,
		`CREATE INDEX IF NOT EXISTS idx_task_updates_task ON task_updates(task_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_task_reviews_task ON task_reviews(task_id, created_at);`,
	},
}
