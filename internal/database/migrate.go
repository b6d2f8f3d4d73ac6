package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the booking schema when it is missing.  Statements run
// one by one because the DSN does not enable multiStatements.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(32) NULL,
			email VARCHAR(255) NULL,
			role ENUM('CUSTOMER','STAFF') NOT NULL DEFAULT 'CUSTOMER',
			total_visits INT UNSIGNED NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS zones (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS restaurant_tables (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			zone_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(50) NOT NULL,
			capacity INT UNSIGNED NOT NULL,
			min_capacity INT UNSIGNED NOT NULL DEFAULT 1,
			price_per_hour_cents BIGINT NOT NULL DEFAULT 0,
			deposit_cents BIGINT NOT NULL DEFAULT 0,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			UNIQUE KEY uq_table_zone_name (zone_id, name),
			CONSTRAINT fk_table_zone FOREIGN KEY (zone_id) REFERENCES zones(id),
			CONSTRAINT chk_table_capacity CHECK (min_capacity <= capacity)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS menu_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price_cents BIGINT NOT NULL,
			is_available TINYINT(1) NOT NULL DEFAULT 1
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS restaurant_settings (
			singleton TINYINT UNSIGNED NOT NULL DEFAULT 1 PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			opening_minute SMALLINT UNSIGNED NOT NULL,
			closing_minute SMALLINT UNSIGNED NOT NULL,
			booking_interval INT UNSIGNED NOT NULL,
			min_booking_duration INT UNSIGNED NOT NULL,
			max_booking_duration INT UNSIGNED NOT NULL,
			default_booking_duration INT UNSIGNED NOT NULL,
			booking_advance_days INT UNSIGNED NOT NULL,
			cancellation_hours INT UNSIGNED NOT NULL,
			CONSTRAINT chk_settings_singleton CHECK (singleton = 1)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			booking_number CHAR(8) NOT NULL UNIQUE,
			user_id BIGINT UNSIGNED NOT NULL,
			table_id BIGINT UNSIGNED NOT NULL,
			date DATE NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			duration INT UNSIGNED NOT NULL,
			guests_count INT UNSIGNED NOT NULL,
			status ENUM('pending','confirmed','active','completed','cancelled','no_show') NOT NULL DEFAULT 'pending',
			comment TEXT NULL,
			special_requests TEXT NULL,
			contact_name VARCHAR(255) NOT NULL DEFAULT '',
			contact_phone VARCHAR(32) NOT NULL DEFAULT '',
			contact_email VARCHAR(255) NOT NULL DEFAULT '',
			table_price_cents BIGINT NOT NULL,
			deposit_cents BIGINT NOT NULL,
			total_cents BIGINT NOT NULL,
			confirmed_at DATETIME NULL,
			cancelled_at DATETIME NULL,
			cancellation_reason TEXT NULL,
			version INT UNSIGNED NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			KEY idx_booking_date_start (date, start_time),
			KEY idx_booking_table_start (table_id, start_time),
			KEY idx_booking_user_start (user_id, start_time),
			KEY idx_booking_status (status),
			CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users(id),
			CONSTRAINT fk_booking_table FOREIGN KEY (table_id) REFERENCES restaurant_tables(id),
			CONSTRAINT chk_booking_window CHECK (start_time < end_time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS booking_menu_items (
			booking_id BIGINT UNSIGNED NOT NULL,
			menu_item_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL,
			quantity INT UNSIGNED NOT NULL,
			price_per_item_cents BIGINT NOT NULL,
			notes TEXT NULL,
			PRIMARY KEY (booking_id, menu_item_id),
			CONSTRAINT fk_bmi_booking FOREIGN KEY (booking_id) REFERENCES bookings(id),
			CONSTRAINT fk_bmi_menu FOREIGN KEY (menu_item_id) REFERENCES menu_items(id),
			CONSTRAINT chk_bmi_quantity CHECK (quantity >= 1)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS booking_history (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT UNSIGNED NOT NULL,
			action VARCHAR(32) NOT NULL,
			old_status VARCHAR(16) NULL,
			new_status VARCHAR(16) NOT NULL,
			changed_by BIGINT UNSIGNED NULL,
			comment TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			KEY idx_history_booking (booking_id, created_at),
			CONSTRAINT fk_history_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
