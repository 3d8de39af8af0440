package register

// Clone returns a full recursive value copy of the draft. Mutating the live
// draft after taking a clone never alters the clone, which is what makes a
// clone usable as a rollback snapshot. nil collections stay nil so that a
// restored draft is indistinguishable from the original.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	if d.ID != nil {
		id := *d.ID
		out.ID = &id
	}
	if d.Items != nil {
		out.Items = make([]LineItem, len(d.Items))
		for i := range d.Items {
			out.Items[i] = d.Items[i].clone()
		}
	}
	if d.Discounts != nil {
		out.Discounts = make([]Discount, len(d.Discounts))
		copy(out.Discounts, d.Discounts)
	}
	out.Voucher = d.Voucher.clone()
	if d.AddonItems != nil {
		out.AddonItems = make([]string, len(d.AddonItems))
		copy(out.AddonItems, d.AddonItems)
	}
	return &out
}

// Restore replaces the live draft's contents with the snapshot's contents.
// The snapshot itself is cloned so the caller may keep or reuse it.
func (d *Draft) Restore(snapshot *Draft) {
	if d == nil || snapshot == nil {
		return
	}
	*d = *snapshot.Clone()
}

func (li LineItem) clone() LineItem {
	out := li
	out.EventID = cloneIntPtr(li.EventID)
	out.EventRegistrationID = cloneIntPtr(li.EventRegistrationID)
	out.RoleID = cloneIntPtr(li.RoleID)
	out.VariantID = cloneIntPtr(li.VariantID)
	out.ItemID = cloneIntPtr(li.ItemID)
	return out
}

func (v Voucher) clone() Voucher {
	out := v
	if v.VoucherAmount != nil {
		amount := *v.VoucherAmount
		out.VoucherAmount = &amount
	}
	if v.Errors != nil {
		out.Errors = make([]SubmitError, len(v.Errors))
		copy(out.Errors, v.Errors)
	}
	return out
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
