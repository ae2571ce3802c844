// internal/rfd77402/calibration.go
package rfd77402

import "fmt"

// LoadCalibration fetches the MCPU calibration payload through the mailbox.
//
// The chip is moved to On, stale mailbox messages are discarded, then the
// 0x0006 command is posted and 27 words are collected high byte first.
// The stored buffer is only replaced when every word arrived.
func (d *Device) LoadCalibration() error {
	if err := d.GotoOn(); err != nil {
		return err
	}

	discarded := 0
	drained, err := retry(maxStaleMessages+1, 0, d.sleep, func() (bool, error) {
		pending, err := d.mailboxPending()
		if err != nil {
			return false, err
		}
		if !pending {
			return true, nil
		}
		if discarded == maxStaleMessages {
			return false, nil
		}
		discarded++
		_, err = d.Mailbox()
		return false, err
	})
	if err != nil {
		return err
	}
	if !drained {
		return ErrTooManyMessages
	}

	if err := d.write16(RegHostToMCPUMailbox, MailboxCalibration); err != nil {
		return err
	}

	var buf [CalibrationSize]byte
	for i := 0; i < CalibrationMessages; i++ {
		ok, err := retry(MailboxAttempts, d.interval, d.sleep, d.mailboxPending)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("rfd77402: calibration message %d: %w", i, ErrMailboxTimeout)
		}
		msg, err := d.Mailbox()
		if err != nil {
			return err
		}
		buf[2*i] = byte(msg >> 8)
		buf[2*i+1] = byte(msg)
	}

	d.calibration = buf
	d.calibrated = true
	d.log.Debugw("calibration loaded", "bytes", CalibrationSize)
	return nil
}

// Calibration returns a copy of the calibration payload and whether one
// has been loaded.
func (d *Device) Calibration() ([CalibrationSize]byte, bool) {
	return d.calibration, d.calibrated
}

func (d *Device) mailboxPending() (bool, error) {
	icsr, err := d.read8(RegICSR)
	if err != nil {
		return false, err
	}
	return icsr&ICSRMailbox != 0, nil
}
